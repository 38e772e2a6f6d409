package oauth2

// ClientID identifies a registered OAuth2 client.
type ClientID string

// TokenID is the opaque value of an access or refresh token.
type TokenID string

// ScopeID names a single scope, e.g. "api.read".
type ScopeID string

// AuthorizationCode is the value handed out by the authorization endpoint.
type AuthorizationCode string

// Username is the name of an authenticated resource owner.
type Username string

func (c ClientID) String() string          { return string(c) }
func (t TokenID) String() string           { return string(t) }
func (s ScopeID) String() string           { return string(s) }
func (a AuthorizationCode) String() string { return string(a) }
func (u Username) String() string          { return string(u) }
