package clients

import "github.com/jrsteele09/go-oauth2-core/oauthmodel"

// RedirectResolver picks the redirect URI an authorization response is sent to.
type RedirectResolver struct{}

// Resolve returns redirectURI when the client registered it. With no
// redirectURI the client's only registered URI is used.
func (RedirectResolver) Resolve(redirectURI string, client *Client) (string, error) {
	if redirectURI == "" {
		if len(client.RedirectURIs) == 1 {
			return client.RedirectURIs[0], nil
		}
		return "", oauthmodel.InvalidRequest("redirect uri is required")
	}
	if !client.HasRedirectURI(redirectURI) {
		return "", oauthmodel.InvalidGrant("redirect_uri mismatch")
	}
	return redirectURI, nil
}
