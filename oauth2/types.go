package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Used in: Authorization Code Flow (most secure, requires server-side client)
	// Returns an authorization code that must be exchanged for tokens at the token endpoint.
	CodeResponseType ResponseType = "code"

	// TokenResponseType indicates the implicit flow.
	// Used in: Implicit Flow (deprecated by OAuth 2.1, kept for legacy clients)
	// The access token is returned directly from the authorization endpoint, no refresh token.
	TokenResponseType ResponseType = "token"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to prevent authorization code interception attacks (especially for public clients).
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Server validates: SHA256(provided code_verifier) == stored code_challenge
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypeNone (labeled "plain") means no hashing, code_verifier sent directly.
	// Server validates: provided code_verifier == stored code_challenge
	CodeMethodTypeNone CodeMethodType = "plain"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, redirect_uri, code_verifier (if PKCE)
	// Returns: access_token, refresh_token
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, optional narrower scope
	// Returns: new access_token and a rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"

	// PasswordGrant exchanges resource owner credentials for tokens.
	// Token request includes: username, password, client_id, scope
	// Returns: access_token, refresh_token
	PasswordGrant GrantType = "password"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: client_id, client_secret, scope
	// Returns: access_token (no refresh_token, no user)
	ClientCredentialsGrant GrantType = "client_credentials"

	// ImplicitGrant issues a token for a user already authenticated upstream.
	// Token request includes: username, client_id, scope
	// Returns: access_token (no refresh_token)
	ImplicitGrant GrantType = "implicit"
)

// Valid reports whether g is one of the supported grant types.
func (g GrantType) Valid() bool {
	switch g {
	case AuthorizationCodeGrant, RefreshTokenGrant, PasswordGrant, ClientCredentialsGrant, ImplicitGrant:
		return true
	}
	return false
}

func (g GrantType) String() string {
	return string(g)
}
