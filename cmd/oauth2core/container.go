package main

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jrsteele09/go-oauth2-core/authcode"
	fakecoderepo "github.com/jrsteele09/go-oauth2-core/authcode/fakerepo"
	"github.com/jrsteele09/go-oauth2-core/authcode/redisrepo"
	"github.com/jrsteele09/go-oauth2-core/granter"
	"github.com/jrsteele09/go-oauth2-core/internal/config"
	"github.com/jrsteele09/go-oauth2-core/internal/database"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/jrsteele09/go-oauth2-core/token/jwt"
	tokenfakerepo "github.com/jrsteele09/go-oauth2-core/token/repofake"
	"github.com/jrsteele09/go-oauth2-core/token/sqlrepo"
	"github.com/jrsteele09/go-oauth2-core/tokenservice"
	"github.com/jrsteele09/go-oauth2-core/users"
	fakeuserrepo "github.com/jrsteele09/go-oauth2-core/users/repofake"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const (
	storeSQL    = "sql"
	storeMemory = "memory"

	signerKeyID = "oauth2core"
)

// container owns every dependency a command needs and closes them again.
type container struct {
	cfg     config.Config
	db      *sql.DB
	codes   *redisrepo.RedisCodeRepo
	limiter *users.RateLimitedAuthenticator
	signer  jwt.Signer
	metrics *prometheus.Registry
	service *tokenservice.Service
}

type containerOptions struct {
	store     string
	seedUsers []string
}

func newContainer(ctx context.Context, cfg config.Config, opts containerOptions) (*container, error) {
	c := &container{cfg: cfg, metrics: prometheus.NewRegistry()}
	if err := c.build(ctx, opts); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *container) build(ctx context.Context, opts containerOptions) error {
	cfg := c.cfg
	repos, codeRepo, tx, err := c.stores(ctx, opts.store)
	if err != nil {
		return err
	}

	userRepo, err := seededUsers(ctx, opts.seedUsers)
	if err != nil {
		return err
	}
	var authenticator users.Authenticator = users.NewRepoAuthenticator(userRepo)
	if cfg.GetEnableRateLimiting() {
		c.limiter = users.NewRateLimitedAuthenticator(authenticator, cfg)
		authenticator = c.limiter
	}

	granterOptions := []granter.Option{granter.WithConfig(cfg)}
	codes := authcode.NewConsumer(codeRepo, authcode.WithConfig(cfg))
	registry := granter.Registry{
		oauth2.AuthorizationCodeGrant: granter.NewAuthorizationCodeGranter(codes, granterOptions...).WithRequirePKCE(cfg.GetRequirePKCE()),
		oauth2.RefreshTokenGrant:      granter.NewRefreshTokenGranter(repos.RefreshTokens, granterOptions...),
		oauth2.PasswordGrant:          granter.NewPasswordGranter(authenticator, granterOptions...),
		oauth2.ClientCredentialsGrant: granter.NewClientCredentialsGranter(granterOptions...),
		oauth2.ImplicitGrant:          granter.NewImplicitGranter(granterOptions...),
	}
	grantMetrics, err := granter.NewMetrics(c.metrics)
	if err != nil {
		return errors.Wrap(err, "[container.build] register metrics")
	}

	serviceOptions := []tokenservice.Option{
		tokenservice.WithTxManager(tx),
		tokenservice.WithUserLookup(userRepo),
		tokenservice.WithRevocationList(token.NewInMemoryRevocationList(nil)),
	}
	enhancer, err := c.enhancer()
	if err != nil {
		return err
	}
	if enhancer != nil {
		serviceOptions = append(serviceOptions, tokenservice.WithEnhancer(enhancer))
	}

	c.service, err = tokenservice.New(repos, grantMetrics.Instrument(registry), serviceOptions...)
	return err
}

func (c *container) stores(ctx context.Context, store string) (tokenservice.Repos, authcode.Repo, database.TxManager, error) {
	switch store {
	case storeMemory:
		access, refresh := tokenfakerepo.NewFakeTokensRepo()
		return tokenservice.Repos{AccessTokens: access, RefreshTokens: refresh}, fakecoderepo.NewFakeCodeRepo(), database.NoopTxManager{}, nil

	case storeSQL:
		db, err := c.database(ctx)
		if err != nil {
			return tokenservice.Repos{}, nil, nil, err
		}
		access, refresh, err := sqlrepo.New(db, c.cfg.GetDBDriver())
		if err != nil {
			return tokenservice.Repos{}, nil, nil, err
		}
		c.codes, err = redisrepo.New(ctx, c.cfg)
		if err != nil {
			return tokenservice.Repos{}, nil, nil, err
		}
		return tokenservice.Repos{AccessTokens: access, RefreshTokens: refresh}, c.codes, database.NewTxManager(db), nil

	default:
		return tokenservice.Repos{}, nil, nil, errors.Errorf("unknown store %q, expected %q or %q", store, storeSQL, storeMemory)
	}
}

func (c *container) database(ctx context.Context) (*sql.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := database.Connect(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// enhancer returns nil when JWT signing is not configured.
func (c *container) enhancer() (token.Enhancer, error) {
	signerType := c.cfg.GetJWTSignerType()
	secret := c.cfg.GetJWTSigningSecret()
	if secret == "" && strings.EqualFold(signerType, jwt.SignerTypeHMAC) {
		return nil, nil
	}
	signer, err := jwt.NewSigner(signerType, signerKeyID, secret)
	if err != nil {
		return nil, errors.Wrap(err, "[container.enhancer]")
	}
	c.signer = signer
	return jwt.NewEnhancer(signer, c.cfg.GetIssuer()), nil
}

// seededUsers builds the in-memory user store from "name:password" pairs.
func seededUsers(ctx context.Context, seeds []string) (*fakeuserrepo.FakeUserRepo, error) {
	repo := fakeuserrepo.NewFakeUserRepo()
	for _, seed := range seeds {
		name, password, ok := strings.Cut(seed, ":")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid user %q, expected name:password", seed)
		}
		hash, err := users.HashPassword(password)
		if err != nil {
			return nil, errors.Wrapf(err, "hash password for %s", name)
		}
		if err := repo.Upsert(ctx, &users.User{Username: oauth2.Username(name), PasswordHash: hash, Verified: true}); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (c *container) Close() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
	if c.codes != nil {
		if err := c.codes.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}
