// Package jwt signs granted access tokens as JWTs and verifies them again.
package jwt

import (
	"context"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

// AdditionalInfoKey is the additional-information entry holding the signed JWT.
const AdditionalInfoKey = "jwt"

var _ token.Enhancer = (*Enhancer)(nil)

// Enhancer signs a JWT describing the token and stores it in the token's
// additional information.
type Enhancer struct {
	signer    Signer
	issuer    string
	audiences []string
}

type EnhancerOption func(*Enhancer)

// WithAudience adds audiences besides the client id.
func WithAudience(audiences ...string) EnhancerOption {
	return func(e *Enhancer) {
		e.audiences = append(e.audiences, audiences...)
	}
}

func NewEnhancer(signer Signer, issuer string, options ...EnhancerOption) *Enhancer {
	e := &Enhancer{
		signer: signer,
		issuer: issuer,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *Enhancer) Enhance(_ context.Context, t *token.AuthorizedAccessToken) error {
	subject := string(t.Username)
	if subject == "" {
		subject = string(t.Client)
	}

	claims := jwtlib.MapClaims{
		"iss":        e.issuer,
		"sub":        subject,
		"aud":        append([]string{string(t.Client)}, e.audiences...),
		"client_id":  string(t.Client),
		"scope":      t.Scopes.String(),
		"grant_type": string(t.GrantType),
		"jti":        string(t.ID),
		"iat":        t.IssuedAt.Unix(),
		"exp":        t.Expiration.Unix(),
	}

	signed, err := e.signer.Sign(claims)
	if err != nil {
		return errors.Wrapf(err, "[Enhancer.Enhance] sign token %s", t.ID)
	}
	t.PutAdditionalInfo(AdditionalInfoKey, signed)
	return nil
}
