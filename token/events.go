package token

import "github.com/jrsteele09/go-oauth2-core/oauth2"

// RefreshTokenIssuedEvent is recorded when a refresh token is attached to an access token.
type RefreshTokenIssuedEvent struct {
	AccessTokenID  oauth2.TokenID
	RefreshTokenID oauth2.TokenID
	Client         oauth2.ClientID
}

func (RefreshTokenIssuedEvent) EventName() string { return "token.refresh_issued" }

// AccessTokenGrantedEvent is recorded once a granted token has been stored.
type AccessTokenGrantedEvent struct {
	AccessTokenID oauth2.TokenID
	Client        oauth2.ClientID
	Username      oauth2.Username
	GrantType     oauth2.GrantType
}

func (AccessTokenGrantedEvent) EventName() string { return "token.granted" }

// AccessTokenRevokedEvent is raised after a token has been deleted on request.
type AccessTokenRevokedEvent struct {
	AccessTokenID oauth2.TokenID
	Client        oauth2.ClientID
}

func (AccessTokenRevokedEvent) EventName() string { return "token.revoked" }
