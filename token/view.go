package token

import (
	"time"

	"github.com/jrsteele09/go-oauth2-core/internal/utils"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

const BearerTokenType = "Bearer"

// AccessTokenView is the read-only projection of an access token handed to callers.
type AccessTokenView struct {
	Value          oauth2.TokenID
	Client         oauth2.ClientID
	Scopes         oauth2.ScopeSet
	TokenType      string
	Username       *oauth2.Username
	Expiration     time.Time
	ExpiresIn      int64
	IsExpired      bool
	AdditionalInfo map[string]string
	RefreshToken   *RefreshTokenView
}

type RefreshTokenView struct {
	Value      oauth2.TokenID
	Expiration time.Time
	IsExpired  bool
}

// NewAccessTokenView projects t as seen at now.
func NewAccessTokenView(t *AuthorizedAccessToken, now time.Time) *AccessTokenView {
	if t == nil {
		return nil
	}

	view := &AccessTokenView{
		Value:      t.ID,
		Client:     t.Client,
		Scopes:     t.Scopes.Clone(),
		TokenType:  BearerTokenType,
		Expiration: t.Expiration,
		ExpiresIn:  t.ExpiresIn(now),
		IsExpired:  t.IsExpired(now),
	}
	if t.Username != "" {
		view.Username = utils.Ptr(t.Username)
	}
	if len(t.AdditionalInfo) > 0 {
		view.AdditionalInfo = make(map[string]string, len(t.AdditionalInfo))
		for k, v := range t.AdditionalInfo {
			view.AdditionalInfo[k] = v
		}
	}
	if t.RefreshToken != nil {
		view.RefreshToken = &RefreshTokenView{
			Value:      t.RefreshToken.ID,
			Expiration: t.RefreshToken.Expiration,
			IsExpired:  t.RefreshToken.IsExpired(now),
		}
	}
	return view
}

// TokenResponse builds the token endpoint response body.
func (v *AccessTokenView) TokenResponse() *oauth2.TokenResponse {
	resp := &oauth2.TokenResponse{
		AccessToken:    string(v.Value),
		TokenType:      v.TokenType,
		ExpiresIn:      v.ExpiresIn,
		Scope:          v.Scopes.String(),
		AdditionalInfo: v.AdditionalInfo,
	}
	if v.RefreshToken != nil {
		resp.RefreshToken = string(v.RefreshToken.Value)
	}
	return resp
}
