package oauth2

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /token endpoint after the
// transport layer has authenticated the client.
type TokenRequest struct {
	// GrantType selects the granter strategy.
	// Required: Yes
	// Example: "authorization_code", "refresh_token", "password"
	GrantType GrantType

	// Username is the resource owner name.
	// Required: password and implicit grants
	Username Username

	// Password is the resource owner secret.
	// Required: password grant only
	// Security: Never log or expose this value
	Password string

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	ClientID ClientID

	// RefreshToken is exchanged for a new access token.
	// Required: refresh_token grant only
	// Behavior: One-time use, deleted on redemption even when the grant fails
	RefreshToken TokenID

	// Code is the authorization code received from the authorization endpoint.
	// Required: authorization_code grant only
	// Usage: Exchanged once for tokens, then becomes invalid
	Code AuthorizationCode

	// State echoes the state sent at the authorization endpoint.
	// Required: No
	State string

	// RedirectURI must match the redirect_uri used to obtain the code.
	// Required: authorization_code grant when one was sent at the authorization endpoint
	RedirectURI string

	// Scopes requested for the token.
	// Required: No (defaults depend on the grant type)
	Scopes ScopeSet

	// CodeVerifier is the PKCE code verifier that matches the code_challenge.
	// Required: Yes (if PKCE was used in authorization request)
	// Example: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	CodeVerifier string
}

// AuthorizationRequest is the request context an authorization code was issued for,
// or is being redeemed against.
type AuthorizationRequest struct {
	ClientID     ClientID
	Username     Username
	State        string
	RedirectURI  string
	Scopes       ScopeSet
	ResponseType ResponseType

	// CodeChallenge and CodeChallengeMethod carry PKCE parameters when the
	// request originated from the authorization endpoint.
	CodeChallenge       string
	CodeChallengeMethod CodeMethodType
}

// AuthorizationRequestFromToken derives the redemption context of an authorization
// code from a token request.
func AuthorizationRequestFromToken(req *TokenRequest) AuthorizationRequest {
	return AuthorizationRequest{
		ClientID:     req.ClientID,
		Username:     req.Username,
		State:        req.State,
		RedirectURI:  req.RedirectURI,
		Scopes:       req.Scopes,
		ResponseType: CodeResponseType,
	}
}
