package token

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

// AccessTokenRepo stores access tokens. Implementations return
// errors.ErrNotFound from internal/errors when a lookup misses.
type AccessTokenRepo interface {
	FindByID(ctx context.Context, id oauth2.TokenID) (*AuthorizedAccessToken, error)
	FindByClientAndUser(ctx context.Context, client oauth2.ClientID, username oauth2.Username) (*AuthorizedAccessToken, error)
	// Save persists the token and its linked refresh token.
	Save(ctx context.Context, t *AuthorizedAccessToken) error
	// Delete removes the token and its linked refresh token. It reports
	// whether a token was removed.
	Delete(ctx context.Context, id oauth2.TokenID) (bool, error)
}

type RefreshTokenRepo interface {
	FindByID(ctx context.Context, id oauth2.TokenID) (*AuthorizedRefreshToken, error)
	// Consume atomically loads and deletes a refresh token. Only one caller
	// can consume a given id.
	Consume(ctx context.Context, id oauth2.TokenID) (*AuthorizedRefreshToken, error)
}
