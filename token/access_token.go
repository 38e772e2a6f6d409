package token

import (
	"math"
	"time"

	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
)

// AuthorizedAccessToken is an issued access token together with the
// refresh token it may carry.
type AuthorizedAccessToken struct {
	events.Recorder

	ID             oauth2.TokenID
	Client         oauth2.ClientID
	Username       oauth2.Username // empty for client credentials
	Scopes         oauth2.ScopeSet
	GrantType      oauth2.GrantType
	IssuedAt       time.Time
	Expiration     time.Time
	AdditionalInfo map[string]string
	RefreshToken   *AuthorizedRefreshToken
}

// AccessTokenOptions carries the values an access token is built from.
type AccessTokenOptions struct {
	Client         oauth2.ClientID
	Username       oauth2.Username
	Scopes         oauth2.ScopeSet
	GrantType      oauth2.GrantType
	IssuedAt       time.Time
	Expiration     time.Time
	AdditionalInfo map[string]string

	// Now supplies IssuedAt when it is zero. Defaults to time.Now.
	Now func() time.Time
}

// NewAccessToken creates a token with a freshly generated id.
func NewAccessToken(gen IDGenerator, opts AccessTokenOptions) (*AuthorizedAccessToken, error) {
	if gen == nil {
		return nil, errors.New("[token.NewAccessToken] id generator is required")
	}
	if opts.Client == "" {
		return nil, errors.New("[token.NewAccessToken] client is required")
	}
	if opts.Scopes.IsEmpty() {
		return nil, errors.New("[token.NewAccessToken] scopes are required")
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		issuedAt = now()
	}
	if !opts.Expiration.After(issuedAt) {
		return nil, errors.Errorf("[token.NewAccessToken] expiration %s is not after issue time %s",
			opts.Expiration.Format(time.RFC3339), issuedAt.Format(time.RFC3339))
	}

	id, err := gen.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "[token.NewAccessToken] generate id")
	}

	var info map[string]string
	if len(opts.AdditionalInfo) > 0 {
		info = make(map[string]string, len(opts.AdditionalInfo))
		for k, v := range opts.AdditionalInfo {
			info[k] = v
		}
	}

	return &AuthorizedAccessToken{
		ID:             oauth2.TokenID(id),
		Client:         opts.Client,
		Username:       opts.Username,
		Scopes:         opts.Scopes.Clone(),
		GrantType:      opts.GrantType,
		IssuedAt:       issuedAt,
		Expiration:     opts.Expiration,
		AdditionalInfo: info,
	}, nil
}

// ComposeUniqueKey identifies the single live token slot of a client and user.
// Client-only tokens are keyed by grant type instead.
func (t *AuthorizedAccessToken) ComposeUniqueKey() string {
	return ComposeUniqueKey(t.Client, t.Username, t.GrantType)
}

// ComposeUniqueKey builds the slot key "client:username", or
// "client:grant_type" when there is no user.
func ComposeUniqueKey(client oauth2.ClientID, username oauth2.Username, grantType oauth2.GrantType) string {
	if username != "" {
		return string(client) + ":" + string(username)
	}
	return string(client) + ":" + string(grantType)
}

func (t *AuthorizedAccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expiration)
}

// ExpiresIn returns the remaining lifetime in whole seconds, rounded up.
func (t *AuthorizedAccessToken) ExpiresIn(now time.Time) int64 {
	return remainingSeconds(t.Expiration, now)
}

// GenerateRefreshToken attaches a new refresh token expiring at expiration.
func (t *AuthorizedAccessToken) GenerateRefreshToken(gen IDGenerator, expiration time.Time) error {
	if gen == nil {
		return errors.New("[AuthorizedAccessToken.GenerateRefreshToken] id generator is required")
	}
	id, err := gen.Generate()
	if err != nil {
		return errors.Wrap(err, "[AuthorizedAccessToken.GenerateRefreshToken] generate id")
	}

	t.RefreshToken = &AuthorizedRefreshToken{
		ID:          oauth2.TokenID(id),
		Expiration:  expiration,
		AccessToken: t,
	}
	t.Record(RefreshTokenIssuedEvent{
		AccessTokenID:  t.ID,
		RefreshTokenID: t.RefreshToken.ID,
		Client:         t.Client,
	})
	return nil
}

func (t *AuthorizedAccessToken) PutAdditionalInfo(key, value string) {
	if t.AdditionalInfo == nil {
		t.AdditionalInfo = make(map[string]string)
	}
	t.AdditionalInfo[key] = value
}

func remainingSeconds(expiration, now time.Time) int64 {
	if !now.Before(expiration) {
		return 0
	}
	return int64(math.Ceil(expiration.Sub(now).Seconds()))
}
