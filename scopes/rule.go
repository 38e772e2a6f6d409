package scopes

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-oauth2-core/authorities"
	"github.com/jrsteele09/go-oauth2-core/validation"
	"github.com/rs/zerolog/log"
)

const (
	AccessibleAuthorityProperty = "accessibleAuthority"
	accessibleAuthorityMessage  = "accessible authority is not registered"
)

var _ validation.Rule[*Scope] = (*AccessibleAuthorityRule)(nil)

// AccessibleAuthorityRule rejects a scope that names an authority the
// authority store does not know. It fails closed when no lookup is set.
type AccessibleAuthorityRule struct {
	Authorities authorities.Lookup

	ctx context.Context
}

// NewAccessibleAuthorityRule binds the rule to the context its lookups run under.
func NewAccessibleAuthorityRule(ctx context.Context, lookup authorities.Lookup) *AccessibleAuthorityRule {
	return &AccessibleAuthorityRule{Authorities: lookup, ctx: ctx}
}

func (r *AccessibleAuthorityRule) IsValid(s *Scope) bool {
	if r.Authorities == nil {
		return false
	}
	if len(s.AccessibleAuthorities) == 0 {
		return true
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	found, err := r.Authorities.FindByCodes(ctx, s.AccessibleAuthorities)
	if err != nil {
		log.Warn().Err(err).Str("scope", s.ID.String()).Msg("authority lookup failed")
		return false
	}
	return authorities.ContainsAll(found, s.AccessibleAuthorities)
}

func (r *AccessibleAuthorityRule) Violation() validation.Error {
	return validation.Error{Property: AccessibleAuthorityProperty, Message: accessibleAuthorityMessage}
}

// DefaultPolicy requires a non-blank id without whitespace and registered accessible authorities.
func DefaultPolicy(ctx context.Context, lookup authorities.Lookup) Policy {
	return Policy{
		ScopeIDRule: validation.NewRule("scopeId", "scope id is required and may not contain spaces",
			func(s *Scope) bool {
				id := string(s.ID)
				return id != "" && !strings.ContainsAny(id, " \t\r\n")
			}),
		AccessibleAuthorityRule: NewAccessibleAuthorityRule(ctx, lookup),
	}
}
