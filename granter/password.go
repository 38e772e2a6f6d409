package granter

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/jrsteele09/go-oauth2-core/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Granter = (*PasswordGranter)(nil)

// PasswordGranter issues a token for resource owner credentials.
type PasswordGranter struct {
	base
	authenticator users.Authenticator
}

func NewPasswordGranter(authenticator users.Authenticator, options ...Option) *PasswordGranter {
	return &PasswordGranter{base: newBase(options), authenticator: authenticator}
}

func (g *PasswordGranter) CreateAccessToken(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	if req.Username == "" {
		return nil, oauthmodel.InvalidRequest("username is required")
	}
	if req.Password == "" {
		return nil, oauthmodel.InvalidRequest("password is required")
	}
	scopes, err := requestedOrClientScopes(client, req.Scopes)
	if err != nil {
		return nil, err
	}

	principal, err := g.authenticator.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "[PasswordGranter.CreateAccessToken]")
		}
		log.Info().Err(err).Str("client_id", client.ID.String()).Str("username", req.Username.String()).Msg("password authentication failed")
		return nil, oauthmodel.UserDeniedAuthorization("bad credentials")
	}

	t, err := g.newToken(client, principal.Name, scopes, oauth2.PasswordGrant)
	if err != nil {
		return nil, err
	}
	if err := g.attachRefreshToken(t, client); err != nil {
		return nil, err
	}
	return t, nil
}
