package clients

import (
	"slices"
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAccessTokenValidity  = 10 * time.Minute
	DefaultRefreshTokenValidity = 2 * time.Hour
)

type Client struct {
	ID oauth2.ClientID `json:"id"`
	// Secret is the bcrypt hash of the client secret.
	Secret       string             `json:"secret"`
	Name         string             `json:"name"`
	Owner        string             `json:"owner"`
	RedirectURIs []string           `json:"redirectURIs"`
	GrantTypes   []oauth2.GrantType `json:"grantTypes"`
	Scopes       oauth2.ScopeSet    `json:"scopes"` // Allowed scopes for this client

	AccessTokenValidity  time.Duration `json:"accessTokenValidity"`
	RefreshTokenValidity time.Duration `json:"refreshTokenValidity"`
}

// New creates a client with the default token validities.
func New(id oauth2.ClientID, name, owner string) *Client {
	return &Client{
		ID:                   id,
		Name:                 name,
		Owner:                owner,
		AccessTokenValidity:  DefaultAccessTokenValidity,
		RefreshTokenValidity: DefaultRefreshTokenValidity,
	}
}

// GetAccessTokenValidity falls back to the default when the client has no override.
func (c *Client) GetAccessTokenValidity(fallback time.Duration) time.Duration {
	if c.AccessTokenValidity > 0 {
		return c.AccessTokenValidity
	}
	return fallback
}

func (c *Client) GetRefreshTokenValidity(fallback time.Duration) time.Duration {
	if c.RefreshTokenValidity > 0 {
		return c.RefreshTokenValidity
	}
	return fallback
}

// HasScope checks if the client has permission for a specific scope
func (c *Client) HasScope(scope oauth2.ScopeID) bool {
	return c.Scopes.Contains(scope)
}

// CanGrantScopes reports whether every requested scope is held by the client.
// An empty request is always allowed.
func (c *Client) CanGrantScopes(requested oauth2.ScopeSet) bool {
	return c.Scopes.ContainsAll(requested)
}

func (c *Client) HasGrantType(g oauth2.GrantType) bool {
	return slices.Contains(c.GrantTypes, g)
}

func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

func (c *Client) AddRedirectURI(uri string) {
	if !c.HasRedirectURI(uri) {
		c.RedirectURIs = append(c.RedirectURIs, uri)
	}
}

func (c *Client) RemoveRedirectURI(uri string) {
	c.RedirectURIs = slices.DeleteFunc(c.RedirectURIs, func(u string) bool { return u == uri })
}

func (c *Client) AddGrantType(g oauth2.GrantType) {
	if !c.HasGrantType(g) {
		c.GrantTypes = append(c.GrantTypes, g)
	}
}

func (c *Client) RemoveGrantType(g oauth2.GrantType) {
	c.GrantTypes = slices.DeleteFunc(c.GrantTypes, func(t oauth2.GrantType) bool { return t == g })
}

func (c *Client) AddScope(id oauth2.ScopeID) {
	c.Scopes = oauth2.NewScopeSet(append(c.Scopes.Clone(), id)...)
}

func (c *Client) RemoveScope(id oauth2.ScopeID) {
	c.Scopes = slices.DeleteFunc(c.Scopes.Clone(), func(s oauth2.ScopeID) bool { return s == id })
}

// SetSecret stores the bcrypt hash of raw.
func (c *Client) SetSecret(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.Secret = string(hash)
	return nil
}

// SecretMatches compares raw against the stored hash.
func (c *Client) SecretMatches(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(raw)) == nil
}

// Policy is the set of rules a client is checked against. Nil slots are skipped.
type Policy struct {
	ClientIDRule   validation.Rule[*Client]
	OwnerRule      validation.Rule[*Client]
	ClientNameRule validation.Rule[*Client]
	GrantTypeRule  validation.Rule[*Client]
	ScopeRule      validation.Rule[*Client]
}

func (c *Client) Validate(policy Policy) error {
	return validation.Of(c).
		Register(policy.ClientIDRule).
		Register(policy.OwnerRule).
		Register(policy.ClientNameRule).
		Register(policy.GrantTypeRule).
		Register(policy.ScopeRule).
		Result().Err()
}
