package jwt

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	SignerTypeHMAC  = "HS256"
	SignerTypeRS256 = "RS256"
	SignerTypeES256 = "ES256"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwtlib.MapClaims) (string, error)

	// GetVerificationKey returns the key used to check a parsed token's signature
	GetVerificationKey(token *jwtlib.Token) (any, error)

	GetSigningMethod() jwtlib.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{
		secret: []byte(secret),
	}
}

func (h *HMACSigner) Sign(claims jwtlib.MapClaims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwtlib.SigningMethod {
	return jwtlib.SigningMethodHS256
}

// KeyPairSigner implements Signer using RSA or ECDSA
type KeyPairSigner struct {
	keyPair *KeyPair
}

func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyPair: keyPair,
	}
}

func (a *KeyPairSigner) Sign(claims jwtlib.MapClaims) (string, error) {
	token := jwtlib.NewWithClaims(a.keyPair.GetSigningMethod(), claims)
	token.Header["kid"] = a.keyPair.KeyID

	signedToken, err := token.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with asymmetric key")
	}
	return signedToken, nil
}

func (a *KeyPairSigner) GetVerificationKey(token *jwtlib.Token) (any, error) {
	switch token.Method.(type) {
	case *jwtlib.SigningMethodRSA, *jwtlib.SigningMethodECDSA:
		return a.keyPair.PublicKey, nil
	default:
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

func (a *KeyPairSigner) GetSigningMethod() jwtlib.SigningMethod {
	return a.keyPair.GetSigningMethod()
}

func (a *KeyPairSigner) KeyPair() *KeyPair {
	return a.keyPair
}

// GetJWKS returns the JSON Web Key Set holding the signer's public key
func (a *KeyPairSigner) GetJWKS() (*JWKS, error) {
	jwk, err := a.keyPair.ToJWK()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert key to JWK")
	}
	return &JWKS{Keys: []JWK{*jwk}}, nil
}

// NewSigner builds a signer of the given type. For HS256 the material is
// the shared secret; for RS256 and ES256 it is a PEM private key. Empty
// material generates fresh random keys.
func NewSigner(signerType, keyID, material string) (Signer, error) {
	switch strings.ToUpper(signerType) {
	case SignerTypeHMAC, "":
		if material == "" {
			secret := make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return nil, errors.Wrap(err, "failed to generate HMAC secret")
			}
			material = hex.EncodeToString(secret)
		}
		return NewHMACSigner(material), nil

	case SignerTypeRS256, SignerTypeES256:
		var (
			kp  *KeyPair
			err error
		)
		switch {
		case material != "":
			kp, err = LoadKeyPairFromPEM(keyID, material)
		case strings.EqualFold(signerType, SignerTypeES256):
			kp, err = GenerateECDSAKeyPair(keyID)
		default:
			kp, err = GenerateRSAKeyPair(keyID, 2048)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to prepare %s key pair", signerType)
		}
		return NewKeyPairSigner(kp), nil

	default:
		return nil, errors.Errorf("unsupported signer type: %s", signerType)
	}
}
