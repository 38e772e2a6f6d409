package clients

import (
	"context"
	"regexp"
	"strings"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/scopes"
	"github.com/jrsteele09/go-oauth2-core/validation"
	"github.com/rs/zerolog/log"
)

const (
	ScopeProperty = "scope"
	scopeMessage  = "client holds a scope that cannot be granted"
)

// ScopeLookup resolves scope ids against the scope store.
type ScopeLookup interface {
	FindByIDs(ctx context.Context, ids oauth2.ScopeSet) ([]*scopes.Scope, error)
}

var _ validation.Rule[*Client] = (*CanGrantScopeRule)(nil)

// CanGrantScopeRule rejects a client that holds no scopes or holds a scope the
// scope store does not know. It fails closed when no lookup is set.
type CanGrantScopeRule struct {
	Scopes ScopeLookup

	ctx context.Context
}

func NewCanGrantScopeRule(ctx context.Context, lookup ScopeLookup) *CanGrantScopeRule {
	return &CanGrantScopeRule{Scopes: lookup, ctx: ctx}
}

func (r *CanGrantScopeRule) IsValid(c *Client) bool {
	if r.Scopes == nil || c.Scopes.IsEmpty() {
		return false
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	found, err := r.Scopes.FindByIDs(ctx, c.Scopes)
	if err != nil {
		log.Warn().Err(err).Str("client", c.ID.String()).Msg("scope lookup failed")
		return false
	}
	return scopes.IDs(found).ContainsAll(c.Scopes)
}

func (r *CanGrantScopeRule) Violation() validation.Error {
	return validation.Error{Property: ScopeProperty, Message: scopeMessage}
}

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{4,32}$`)

// DefaultPolicy checks the id format, that an owner and name are set, that
// every grant type is supported and that every scope is registered.
func DefaultPolicy(ctx context.Context, lookup ScopeLookup) Policy {
	return Policy{
		ClientIDRule: validation.NewRule("clientId", "client id must be 4 to 32 letters, digits, '.', '_' or '-'",
			func(c *Client) bool { return clientIDPattern.MatchString(string(c.ID)) }),
		OwnerRule: validation.NewRule("owner", "owner is required",
			func(c *Client) bool { return strings.TrimSpace(c.Owner) != "" }),
		ClientNameRule: validation.NewRule("clientName", "client name is required",
			func(c *Client) bool { return strings.TrimSpace(c.Name) != "" }),
		GrantTypeRule: validation.NewRule("grantType", "at least one supported grant type is required",
			func(c *Client) bool { return validGrantTypes(c.GrantTypes) }),
		ScopeRule: NewCanGrantScopeRule(ctx, lookup),
	}
}

func validGrantTypes(types []oauth2.GrantType) bool {
	if len(types) == 0 {
		return false
	}
	for _, g := range types {
		if !g.Valid() {
			return false
		}
	}
	return true
}
