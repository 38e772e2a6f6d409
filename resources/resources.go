// Package resources models URIs protected by authorities.
package resources

import (
	"slices"

	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/jrsteele09/go-oauth2-core/validation"
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
	MethodAll    Method = "ALL"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodAll:
		return true
	}
	return false
}

// ChangedEvent is recorded whenever a resource's URI, method or authorities change.
type ChangedEvent struct {
	ResourceID string
}

func (ChangedEvent) EventName() string { return "resource.changed" }

// SecuredResource is a resource URI and method that only holders of one of
// its authorities may access.
type SecuredResource struct {
	events.Recorder

	ID          string
	Resource    string
	Method      Method
	Authorities []string
}

func New(id, resource string, method Method) *SecuredResource {
	return &SecuredResource{ID: id, Resource: resource, Method: method}
}

func (r *SecuredResource) ChangeResourceInfo(resource string, method Method) {
	r.Resource = resource
	r.Method = method
	r.changed()
}

func (r *SecuredResource) AddAuthority(code string) {
	if !slices.Contains(r.Authorities, code) {
		r.Authorities = append(r.Authorities, code)
	}
	r.changed()
}

func (r *SecuredResource) RemoveAuthority(code string) {
	r.Authorities = slices.DeleteFunc(r.Authorities, func(c string) bool { return c == code })
	r.changed()
}

func (r *SecuredResource) changed() {
	r.Record(ChangedEvent{ResourceID: r.ID})
}

// Policy names the rule applied to each part of a resource. Empty slots are skipped.
type Policy struct {
	ResourceIDRule  validation.Rule[*SecuredResource]
	ResourceRule    validation.Rule[*SecuredResource]
	MethodRule      validation.Rule[*SecuredResource]
	AuthoritiesRule validation.Rule[*SecuredResource]
}

// Validate runs every rule of policy and returns a *validation.ValidationFailed
// listing all that failed.
func (r *SecuredResource) Validate(policy Policy) error {
	return validation.Of(r).
		Register(policy.ResourceIDRule).
		Register(policy.ResourceRule).
		Register(policy.MethodRule).
		Register(policy.AuthoritiesRule).
		Result().Err()
}
