package clients

import (
	"errors"
	"net/url"
	"sort"
	"time"

	jvalidation "github.com/jellydator/validation"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/validation"
)

type RegisterRequest struct {
	ClientID     string   `json:"clientId"`
	Secret       string   `json:"secret"`
	ClientName   string   `json:"clientName"`
	GrantTypes   []string `json:"grantTypes"`
	Scopes       []string `json:"scopes"`
	RedirectURIs []string `json:"redirectUris"`

	// Zero keeps the defaults.
	AccessTokenValidity  time.Duration `json:"accessTokenValidity"`
	RefreshTokenValidity time.Duration `json:"refreshTokenValidity"`
}

// Validate checks the request shape before any store lookups happen.
func (r *RegisterRequest) Validate() error {
	err := jvalidation.ValidateStruct(r,
		jvalidation.Field(&r.ClientID,
			jvalidation.Required.Error("client id is required"),
			jvalidation.Length(4, 32).Error("client id must be between 4 and 32 characters"),
		),
		jvalidation.Field(&r.Secret,
			jvalidation.Required.Error("secret is required"),
			jvalidation.Length(8, 64).Error("secret must be between 8 and 64 characters"),
		),
		jvalidation.Field(&r.ClientName,
			jvalidation.Required.Error("client name is required"),
			jvalidation.Length(1, 32).Error("client name must be between 1 and 32 characters"),
		),
		jvalidation.Field(&r.GrantTypes, jvalidation.Each(grantTypeRule)),
		jvalidation.Field(&r.RedirectURIs, jvalidation.Each(redirectURIRule)),
		jvalidation.Field(&r.AccessTokenValidity, jvalidation.Min(time.Duration(0))),
		jvalidation.Field(&r.RefreshTokenValidity, jvalidation.Min(time.Duration(0))),
	)
	return toValidationFailed(err)
}

type ModifyRequest struct {
	ClientName         string   `json:"clientName"`
	NewRedirectURIs    []string `json:"newRedirectUris"`
	RemoveRedirectURIs []string `json:"removeRedirectUris"`
	NewGrantTypes      []string `json:"newGrantTypes"`
	RemoveGrantTypes   []string `json:"removeGrantTypes"`
	NewScopes          []string `json:"newScopes"`
	RemoveScopes       []string `json:"removeScopes"`
}

func (r *ModifyRequest) Validate() error {
	err := jvalidation.ValidateStruct(r,
		jvalidation.Field(&r.ClientName,
			jvalidation.Required.Error("client name is required"),
			jvalidation.Length(1, 32).Error("client name must be between 1 and 32 characters"),
		),
		jvalidation.Field(&r.NewRedirectURIs, jvalidation.Each(redirectURIRule)),
		jvalidation.Field(&r.NewGrantTypes, jvalidation.Each(grantTypeRule)),
	)
	return toValidationFailed(err)
}

type ChangeSecretRequest struct {
	ExistingSecret string `json:"existingSecret"`
	NewSecret      string `json:"newSecret"`
}

func (r *ChangeSecretRequest) Validate() error {
	err := jvalidation.ValidateStruct(r,
		jvalidation.Field(&r.ExistingSecret, jvalidation.Required.Error("existing secret is required")),
		jvalidation.Field(&r.NewSecret,
			jvalidation.Required.Error("new secret is required"),
			jvalidation.Length(8, 64).Error("secret must be between 8 and 64 characters"),
		),
	)
	return toValidationFailed(err)
}

var grantTypeRule = jvalidation.By(func(value interface{}) error {
	s, _ := value.(string)
	if !oauth2.GrantType(s).Valid() {
		return errors.New("unsupported grant type")
	}
	return nil
})

var redirectURIRule = jvalidation.By(func(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Fragment != "" {
		return errors.New("redirect uri must be absolute without a fragment")
	}
	return nil
})

// toValidationFailed reports request shape errors the same way policy
// violations are reported, ordered by property.
func toValidationFailed(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs jvalidation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	props := make([]string, 0, len(fieldErrs))
	for p := range fieldErrs {
		props = append(props, p)
	}
	sort.Strings(props)

	failed := &validation.ValidationFailed{}
	for _, p := range props {
		failed.Errors = append(failed.Errors, validation.Error{Property: p, Message: fieldErrs[p].Error()})
	}
	return failed
}
