package scopes

import (
	"context"
	"slices"

	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/validation"
)

// ChangedEvent is recorded when the accessible authorities of a scope change.
type ChangedEvent struct {
	ScopeID oauth2.ScopeID
}

func (ChangedEvent) EventName() string { return "scope.changed" }

// Scope is a named permission a client may request and a resource owner may approve.
type Scope struct {
	events.Recorder `json:"-"`

	ID          oauth2.ScopeID `json:"id"`
	Description string         `json:"description"`
	// AccessibleAuthorities lists the authority codes allowed to see this scope.
	AccessibleAuthorities []string `json:"accessibleAuthorities"`
}

func New(id oauth2.ScopeID, description string) *Scope {
	return &Scope{ID: id, Description: description}
}

func (s *Scope) AddAccessibleAuthority(code string) {
	if slices.Contains(s.AccessibleAuthorities, code) {
		return
	}
	s.AccessibleAuthorities = append(s.AccessibleAuthorities, code)
	s.Record(ChangedEvent{ScopeID: s.ID})
}

func (s *Scope) RemoveAccessibleAuthority(code string) {
	i := slices.Index(s.AccessibleAuthorities, code)
	if i < 0 {
		return
	}
	s.AccessibleAuthorities = slices.Delete(s.AccessibleAuthorities, i, i+1)
	s.Record(ChangedEvent{ScopeID: s.ID})
}

// IsAccessible reports whether any of the given authorities may access the scope.
// A scope with no accessible authorities is visible to nobody.
func (s *Scope) IsAccessible(authorities []string) bool {
	for _, a := range authorities {
		if slices.Contains(s.AccessibleAuthorities, a) {
			return true
		}
	}
	return false
}

// Policy is the set of rules a scope is checked against. Nil slots are skipped.
type Policy struct {
	ScopeIDRule             validation.Rule[*Scope]
	AccessibleAuthorityRule validation.Rule[*Scope]
}

func (s *Scope) Validate(policy Policy) error {
	return validation.Of(s).
		Register(policy.ScopeIDRule).
		Register(policy.AccessibleAuthorityRule).
		Result().Err()
}

type Repo interface {
	Count(ctx context.Context, id oauth2.ScopeID) (int, error)
	Get(ctx context.Context, id oauth2.ScopeID) (*Scope, error)
	List(ctx context.Context) ([]*Scope, error)
	FindByIDs(ctx context.Context, ids oauth2.ScopeSet) ([]*Scope, error)
	Upsert(ctx context.Context, s *Scope) error
	Delete(ctx context.Context, id oauth2.ScopeID) error
}

// Lookup resolves scope ids. Ids that are not registered are left out of the result.
type Lookup interface {
	FindByIDs(ctx context.Context, ids oauth2.ScopeSet) ([]*Scope, error)
}

// IDs returns the ids of found as a set.
func IDs(found []*Scope) oauth2.ScopeSet {
	ids := make([]oauth2.ScopeID, 0, len(found))
	for _, s := range found {
		if s != nil {
			ids = append(ids, s.ID)
		}
	}
	return oauth2.NewScopeSet(ids...)
}
