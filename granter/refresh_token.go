package granter

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/clients"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

var _ Granter = (*RefreshTokenGranter)(nil)

// RefreshTokenGranter rotates a refresh token into a new access token. The
// presented refresh token is consumed before anything else is checked.
type RefreshTokenGranter struct {
	base
	refreshTokens token.RefreshTokenRepo
}

func NewRefreshTokenGranter(refreshTokens token.RefreshTokenRepo, options ...Option) *RefreshTokenGranter {
	return &RefreshTokenGranter{base: newBase(options), refreshTokens: refreshTokens}
}

func (g *RefreshTokenGranter) CreateAccessToken(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	if req.RefreshToken == "" {
		return nil, oauthmodel.InvalidRequest("refresh token is required")
	}

	rt, err := g.refreshTokens.Consume(ctx, req.RefreshToken)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return nil, oauthmodel.InvalidGrant("invalid refresh token")
		}
		return nil, errors.Wrap(err, "[RefreshTokenGranter.CreateAccessToken] consume refresh token")
	}
	original := rt.AccessToken
	if original == nil {
		return nil, oauthmodel.InvalidGrant("invalid refresh token")
	}

	if original.Client != client.ID {
		return nil, oauthmodel.InvalidGrant("refresh token was not issued to client " + client.ID.String())
	}
	if rt.IsExpired(g.nowTime()) {
		return nil, oauthmodel.InvalidGrant("refresh token is expired")
	}
	if !original.Scopes.ContainsAll(req.Scopes) {
		return nil, oauthmodel.InvalidGrant("requested scope exceeds the original grant")
	}

	scopes := original.Scopes
	if !req.Scopes.IsEmpty() {
		scopes = req.Scopes
	}

	t, err := g.newToken(client, original.Username, scopes, original.GrantType)
	if err != nil {
		return nil, err
	}
	if err := g.attachRefreshToken(t, client); err != nil {
		return nil, err
	}
	return t, nil
}
