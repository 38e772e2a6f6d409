package granter

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/authcode"
	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

// CodeConsumer redeems an authorization code exactly once. A code that does
// not exist yields (nil, nil).
type CodeConsumer interface {
	Consume(ctx context.Context, code oauth2.AuthorizationCode) (*authcode.AuthorizationCode, error)
}

var _ Granter = (*AuthorizationCodeGranter)(nil)

// AuthorizationCodeGranter exchanges an authorization code for a token. The
// scope always comes from the code, never from the request.
type AuthorizationCodeGranter struct {
	base
	codes       CodeConsumer
	requirePKCE bool
}

// WithRequirePKCE rejects codes issued without a code challenge.
func (g *AuthorizationCodeGranter) WithRequirePKCE(require bool) *AuthorizationCodeGranter {
	g.requirePKCE = require
	return g
}

func NewAuthorizationCodeGranter(codes CodeConsumer, options ...Option) *AuthorizationCodeGranter {
	return &AuthorizationCodeGranter{base: newBase(options), codes: codes}
}

func (g *AuthorizationCodeGranter) CreateAccessToken(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AuthorizedAccessToken, error) {
	code, err := g.codes.Consume(ctx, req.Code)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthorizationCodeGranter.CreateAccessToken] consume code")
	}
	if code == nil {
		return nil, oauthmodel.InvalidRequest("authorization code not found")
	}

	if code.ClientID != client.ID {
		return nil, oauthmodel.InvalidGrant("authorization code was not issued to client " + client.ID.String())
	}
	if code.ApprovedScopes.IsEmpty() {
		return nil, oauthmodel.InvalidGrant("cannot grant empty scope")
	}
	if !client.CanGrantScopes(code.ApprovedScopes) {
		return nil, oauthmodel.InvalidGrant("approved scope is no longer allowed for client " + client.ID.String())
	}
	authReq := oauth2.AuthorizationRequestFromToken(req)
	authReq.ClientID = client.ID
	if err := code.ValidateWithAuthorizationRequest(authReq); err != nil {
		return nil, err
	}
	if g.requirePKCE && code.CodeChallenge == "" {
		return nil, oauthmodel.InvalidGrant("code_challenge required")
	}
	if err := code.VerifyCodeVerifier(req.CodeVerifier); err != nil {
		return nil, err
	}
	if code.IsExpired(g.nowTime()) {
		return nil, oauthmodel.InvalidGrant("authorization code is expired")
	}

	t, err := g.newToken(client, code.Username, code.ApprovedScopes, oauth2.AuthorizationCodeGrant)
	if err != nil {
		return nil, err
	}
	if err := g.attachRefreshToken(t, client); err != nil {
		return nil, err
	}
	return t, nil
}
