// Package granter turns a token request into a new access token. There is one
// strategy per grant type; a Registry routes requests to them.
package granter

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

// Granter creates an access token for an authenticated client.
type Granter interface {
	CreateAccessToken(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error)
}

// Registry maps each supported grant type to its strategy. Build it once at startup.
type Registry map[oauth2.GrantType]Granter

func (r Registry) Resolve(grantType oauth2.GrantType) (Granter, error) {
	g, ok := r[grantType]
	if !ok || g == nil {
		return nil, oauthmodel.UnsupportedGrantType(string(grantType) + " is not supported")
	}
	return g, nil
}

// ValidityConfig supplies the token lifetimes used when a client has no override.
type ValidityConfig interface {
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
}

// base holds what every strategy needs to build a token.
type base struct {
	tokenIDs        token.IDGenerator
	refreshIDs      token.IDGenerator
	nowTime         func() time.Time
	accessValidity  time.Duration
	refreshValidity time.Duration
}

type Option func(*base)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(b *base) {
		b.nowTime = nowFunc
	}
}

func WithTokenIDGenerator(gen token.IDGenerator) Option {
	return func(b *base) {
		b.tokenIDs = gen
	}
}

func WithRefreshTokenIDGenerator(gen token.IDGenerator) Option {
	return func(b *base) {
		b.refreshIDs = gen
	}
}

// WithConfig overrides the default token lifetimes.
func WithConfig(cfg ValidityConfig) Option {
	return func(b *base) {
		if d := cfg.GetDefaultAccessTokenExpiry(); d > 0 {
			b.accessValidity = d
		}
		if d := cfg.GetDefaultRefreshTokenExpiry(); d > 0 {
			b.refreshValidity = d
		}
	}
}

func newBase(options []Option) base {
	b := base{
		tokenIDs:        token.UUIDGenerator{},
		refreshIDs:      token.UUIDGenerator{},
		nowTime:         time.Now,
		accessValidity:  clients.DefaultAccessTokenValidity,
		refreshValidity: clients.DefaultRefreshTokenValidity,
	}
	for _, opt := range options {
		opt(&b)
	}
	return b
}

func (b *base) newToken(client *clients.Client, username oauth2.Username, scopes oauth2.ScopeSet, grantType oauth2.GrantType) (*token.AuthorizedAccessToken, error) {
	now := b.nowTime()
	t, err := token.NewAccessToken(b.tokenIDs, token.AccessTokenOptions{
		Client:     client.ID,
		Username:   username,
		Scopes:     scopes,
		GrantType:  grantType,
		IssuedAt:   now,
		Expiration: now.Add(client.GetAccessTokenValidity(b.accessValidity)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[granter.newToken]")
	}
	return t, nil
}

func (b *base) attachRefreshToken(t *token.AuthorizedAccessToken, client *clients.Client) error {
	exp := b.nowTime().Add(client.GetRefreshTokenValidity(b.refreshValidity))
	if err := t.GenerateRefreshToken(b.refreshIDs, exp); err != nil {
		return errors.Wrap(err, "[granter.attachRefreshToken]")
	}
	return nil
}

// requestedOrClientScopes checks the requested scopes against the client and
// falls back to every client scope when none were requested. The result is
// never empty.
func requestedOrClientScopes(client *clients.Client, requested oauth2.ScopeSet) (oauth2.ScopeSet, error) {
	if !client.CanGrantScopes(requested) {
		return nil, oauthmodel.InvalidGrant("requested scope is not allowed for client " + client.ID.String())
	}
	if requested.IsEmpty() {
		requested = client.Scopes
	}
	if requested.IsEmpty() {
		return nil, oauthmodel.InvalidGrant("cannot grant empty scope")
	}
	return requested.Clone(), nil
}
