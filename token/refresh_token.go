package token

import (
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

// AuthorizedRefreshToken is a one-time credential for a new access token.
// AccessToken points back at the token it was issued with.
type AuthorizedRefreshToken struct {
	ID          oauth2.TokenID
	Expiration  time.Time
	AccessToken *AuthorizedAccessToken
}

func (r *AuthorizedRefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(r.Expiration)
}
