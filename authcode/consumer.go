package authcode

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultCodeLength = 32

// Config is the code issuing configuration.
type Config interface {
	GetAuthCodeTimeout() time.Duration
	GetCodeGenerationLength() int
}

// Consumer issues codes and redeems them exactly once.
type Consumer struct {
	repo     Repo
	length   int
	expiry   time.Duration
	generate func(length int) (string, error)
	nowTime  func() time.Time
}

type ConsumerOption func(*Consumer)

func WithConfig(cfg Config) ConsumerOption {
	return func(c *Consumer) {
		if cfg.GetCodeGenerationLength() > 0 {
			c.length = cfg.GetCodeGenerationLength()
		}
		if cfg.GetAuthCodeTimeout() > 0 {
			c.expiry = cfg.GetAuthCodeTimeout()
		}
	}
}

func WithNowTime(nowFunc func() time.Time) ConsumerOption {
	return func(c *Consumer) {
		c.nowTime = nowFunc
	}
}

// WithGenerator replaces the random code source.
func WithGenerator(gen func(length int) (string, error)) ConsumerOption {
	return func(c *Consumer) {
		c.generate = gen
	}
}

func NewConsumer(repo Repo, options ...ConsumerOption) *Consumer {
	c := &Consumer{
		repo:     repo,
		length:   defaultCodeLength,
		expiry:   DefaultExpiry,
		generate: RandomCode,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Consume redeems code. A missing code yields (nil, nil) so that each grant
// decides how to report it.
func (c *Consumer) Consume(ctx context.Context, code oauth2.AuthorizationCode) (*AuthorizationCode, error) {
	ac, err := c.repo.Consume(ctx, code)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "[Consumer.Consume]")
	}
	return ac, nil
}

// Issue stores a new code for an approved authorization request.
func (c *Consumer) Issue(ctx context.Context, req oauth2.AuthorizationRequest) (*AuthorizationCode, error) {
	value, err := c.generate(c.length)
	if err != nil {
		return nil, errors.Wrap(err, "[Consumer.Issue] generate code")
	}

	ac := New(req, c.nowTime(), c.expiry)
	ac.Code = oauth2.AuthorizationCode(value)
	if err := c.repo.Save(ctx, ac); err != nil {
		return nil, errors.Wrap(err, "[Consumer.Issue] save code")
	}

	log.Debug().Str("client_id", string(ac.ClientID)).Time("expiration", ac.Expiration).Msg("authorization code issued")
	return ac, nil
}

// RandomCode returns length random bytes, base64url encoded.
func RandomCode(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
