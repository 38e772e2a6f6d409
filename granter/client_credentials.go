package granter

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
)

var _ Granter = (*ClientCredentialsGranter)(nil)

// ClientCredentialsGranter issues a token to the client itself. There is no
// user and no refresh token.
type ClientCredentialsGranter struct {
	base
}

func NewClientCredentialsGranter(options ...Option) *ClientCredentialsGranter {
	return &ClientCredentialsGranter{base: newBase(options)}
}

func (g *ClientCredentialsGranter) CreateAccessToken(_ context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	scopes, err := requestedOrClientScopes(client, req.Scopes)
	if err != nil {
		return nil, err
	}
	return g.newToken(client, "", scopes, oauth2.ClientCredentialsGrant)
}
