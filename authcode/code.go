// Package authcode issues and redeems one-time authorization codes.
package authcode

import (
	"crypto/subtle"
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	xoauth2 "golang.org/x/oauth2"
)

// DefaultExpiry is how long an issued code can be redeemed.
const DefaultExpiry = 5 * time.Minute

// AuthorizationCode binds a one-time code to the authorization request it was issued for.
type AuthorizationCode struct {
	Code           oauth2.AuthorizationCode `json:"code"`
	ClientID       oauth2.ClientID          `json:"client_id"`
	Username       oauth2.Username          `json:"username"`
	ApprovedScopes oauth2.ScopeSet          `json:"approved_scopes"`
	RedirectURI    string                   `json:"redirect_uri,omitempty"`
	State          string                   `json:"state,omitempty"`
	ResponseType   oauth2.ResponseType      `json:"response_type"`
	Expiration     time.Time                `json:"expiration"`

	CodeChallenge       string                `json:"code_challenge,omitempty"`
	CodeChallengeMethod oauth2.CodeMethodType `json:"code_challenge_method,omitempty"`
}

// New builds a code for req expiring at now+expiry. The code value is left
// for the caller to assign.
func New(req oauth2.AuthorizationRequest, now time.Time, expiry time.Duration) *AuthorizationCode {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	method := req.CodeChallengeMethod
	if req.CodeChallenge != "" && method == "" {
		method = oauth2.CodeMethodTypeNone
	}

	return &AuthorizationCode{
		ClientID:            req.ClientID,
		Username:            req.Username,
		ApprovedScopes:      req.Scopes.Clone(),
		RedirectURI:         req.RedirectURI,
		State:               req.State,
		ResponseType:        req.ResponseType,
		Expiration:          now.Add(expiry),
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: method,
	}
}

func (c *AuthorizationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.Expiration)
}

// ValidateWithAuthorizationRequest cross-checks the code against the token
// request redeeming it.
func (c *AuthorizationCode) ValidateWithAuthorizationRequest(req oauth2.AuthorizationRequest) error {
	if c.ClientID != req.ClientID {
		return oauthmodel.InvalidGrant("client id mismatch")
	}
	if c.RedirectURI != "" && c.RedirectURI != req.RedirectURI {
		return oauthmodel.InvalidGrant("redirect_uri mismatch")
	}
	if req.State != "" && c.State != req.State {
		return oauthmodel.InvalidRequest("state mismatch")
	}
	return nil
}

// VerifyCodeVerifier checks a PKCE verifier. Codes issued without a
// challenge accept any verifier.
func (c *AuthorizationCode) VerifyCodeVerifier(verifier string) error {
	if c.CodeChallenge == "" {
		return nil
	}
	if verifier == "" {
		return oauthmodel.InvalidGrant("code_verifier required")
	}

	expected := verifier
	switch c.CodeChallengeMethod {
	case oauth2.CodeMethodTypeS256:
		expected = xoauth2.S256ChallengeFromVerifier(verifier)
	case oauth2.CodeMethodTypeNone, "":
	default:
		return oauthmodel.InvalidGrant("unsupported code_challenge_method")
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(c.CodeChallenge)) != 1 {
		return oauthmodel.InvalidGrant("code_verifier mismatch")
	}
	return nil
}
