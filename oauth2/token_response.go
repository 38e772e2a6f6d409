package oauth2

import (
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is the opaque token value used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token (always "Bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 600 (for the default 10 minutes)
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Only present: authorization_code, password and refresh_token grants
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions, space separated.
	Scope string `json:"scope,omitempty"`

	// AdditionalInfo carries enhancer output such as a signed JWT.
	AdditionalInfo map[string]string `json:"additional_information,omitempty"`
}

// OAuth2Token converts the response into the x/oauth2 client representation,
// measuring expiry from now.
func (r *TokenResponse) OAuth2Token(now time.Time) *xoauth2.Token {
	tok := &xoauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
	}
	if r.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	extra := map[string]any{}
	if r.Scope != "" {
		extra["scope"] = r.Scope
	}
	for k, v := range r.AdditionalInfo {
		extra[k] = v
	}
	if len(extra) > 0 {
		return tok.WithExtra(extra)
	}
	return tok
}
