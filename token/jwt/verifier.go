package jwt

import (
	"context"
	"crypto"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

// Claims are the verified contents of an enhanced access token.
type Claims struct {
	Issuer    string
	Subject   string
	Audience  []string
	ClientID  string
	Scope     string
	GrantType string
	ID        string
	IssuedAt  time.Time
	Expiry    time.Time
}

// ParseWithSigner verifies raw with the signer's key, the issuer and the
// expiry as seen at now().
func ParseWithSigner(raw string, signer Signer, issuer string, now func() time.Time) (*Claims, error) {
	if now == nil {
		now = time.Now
	}

	parsed, err := jwtlib.Parse(raw, signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(now),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[jwt.ParseWithSigner] invalid token")
	}

	mc, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[jwt.ParseWithSigner] unexpected claims type")
	}

	claims := &Claims{
		ClientID:  stringClaim(mc, "client_id"),
		Scope:     stringClaim(mc, "scope"),
		GrantType: stringClaim(mc, "grant_type"),
		ID:        stringClaim(mc, "jti"),
	}
	claims.Issuer, _ = mc.GetIssuer()
	claims.Subject, _ = mc.GetSubject()
	if aud, err := mc.GetAudience(); err == nil {
		claims.Audience = aud
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.Expiry = exp.Time
	}
	return claims, nil
}

func stringClaim(mc jwtlib.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}

// OIDCVerifier checks key-pair signed tokens with go-oidc against a static key set.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier verifies tokens from issuer signed by kp. An empty
// audience skips the audience check.
func NewOIDCVerifier(issuer, audience string, kp *KeyPair, now func() time.Time) *OIDCVerifier {
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{kp.PublicKey}}
	cfg := &oidc.Config{
		ClientID:             audience,
		SkipClientIDCheck:    audience == "",
		SupportedSigningAlgs: []string{kp.Algorithm},
		Now:                  now,
	}
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keySet, cfg)}
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, errors.Wrap(err, "[OIDCVerifier.Verify] invalid token")
	}

	var extra struct {
		ClientID  string `json:"client_id"`
		Scope     string `json:"scope"`
		GrantType string `json:"grant_type"`
		ID        string `json:"jti"`
	}
	if err := idToken.Claims(&extra); err != nil {
		return nil, errors.Wrap(err, "[OIDCVerifier.Verify] decode claims")
	}

	return &Claims{
		Issuer:    idToken.Issuer,
		Subject:   idToken.Subject,
		Audience:  idToken.Audience,
		ClientID:  extra.ClientID,
		Scope:     extra.Scope,
		GrantType: extra.GrantType,
		ID:        extra.ID,
		IssuedAt:  idToken.IssuedAt,
		Expiry:    idToken.Expiry,
	}, nil
}

// ErrRevoked is returned by CheckNotRevoked for a token on the revocation list.
var ErrRevoked = errors.New("token has been revoked")

// CheckNotRevoked rejects claims whose jti is on list. A nil list accepts everything.
func CheckNotRevoked(claims *Claims, list token.RevocationList) error {
	if list != nil && list.IsRevoked(oauth2.TokenID(claims.ID)) {
		return errors.Wrapf(ErrRevoked, "[jwt.CheckNotRevoked] %s", claims.ID)
	}
	return nil
}
