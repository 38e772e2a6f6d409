package token

import (
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

// Introspection is the RFC 7662 introspection response. Inactive tokens
// carry only Active=false.
type Introspection struct {
	Active    bool            `json:"active"`
	ClientID  oauth2.ClientID `json:"client_id,omitempty"`
	Username  oauth2.Username `json:"username,omitempty"`
	Scope     string          `json:"scope,omitempty"`
	TokenType string          `json:"token_type,omitempty"`
	Exp       int64           `json:"exp,omitempty"`
	Iat       int64           `json:"iat,omitempty"`
}

// Introspect reports on t as seen at now. A nil or expired token is inactive.
func Introspect(t *AuthorizedAccessToken, now time.Time) *Introspection {
	if t == nil || t.IsExpired(now) {
		return &Introspection{Active: false}
	}
	return &Introspection{
		Active:    true,
		ClientID:  t.Client,
		Username:  t.Username,
		Scope:     t.Scopes.String(),
		TokenType: BearerTokenType,
		Exp:       t.Expiration.Unix(),
		Iat:       t.IssuedAt.Unix(),
	}
}
