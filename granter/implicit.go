package granter

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
)

var _ Granter = (*ImplicitGranter)(nil)

// ImplicitGranter issues a token for a user the caller has already
// authenticated. No credentials are checked and no refresh token is issued.
type ImplicitGranter struct {
	base
}

func NewImplicitGranter(options ...Option) *ImplicitGranter {
	return &ImplicitGranter{base: newBase(options)}
}

func (g *ImplicitGranter) CreateAccessToken(_ context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	if req.Username == "" {
		return nil, oauthmodel.InvalidRequest("username is required")
	}
	scopes, err := requestedOrClientScopes(client, req.Scopes)
	if err != nil {
		return nil, err
	}
	return g.newToken(client, req.Username, scopes, oauth2.ImplicitGrant)
}
