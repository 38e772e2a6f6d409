// Package tokenservice is the entry point for issuing, reading and revoking
// access tokens. It routes grants to the granter registry and keeps at most
// one live token per client and user.
package tokenservice

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/jrsteele09/go-oauth2-core/granter"
	"github.com/jrsteele09/go-oauth2-core/internal/database"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/jrsteele09/go-oauth2-core/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	AccessTokens  token.AccessTokenRepo
	RefreshTokens token.RefreshTokenRepo
}

type Service struct {
	repos     Repos
	granters  granter.Registry
	enhancer  token.Enhancer
	tx        database.TxManager
	publisher events.Publisher
	users     users.Lookup
	revoked   token.RevocationList
	nowTime   func() time.Time
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

func WithEnhancer(e token.Enhancer) Option {
	return func(s *Service) {
		s.enhancer = e
	}
}

// WithTxManager sets the transaction boundary each grant and revoke runs in.
func WithTxManager(tx database.TxManager) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithUserLookup enables ReadAccessTokenUser.
func WithUserLookup(l users.Lookup) Option {
	return func(s *Service) {
		s.users = l
	}
}

// WithRevocationList records revoked token ids so that JWT copies can be rejected.
func WithRevocationList(l token.RevocationList) Option {
	return func(s *Service) {
		s.revoked = l
	}
}

func New(repos Repos, granters granter.Registry, options ...Option) (*Service, error) {
	if repos.AccessTokens == nil {
		return nil, errors.New("[tokenservice.New] access token repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[tokenservice.New] refresh token repo is required")
	}
	if len(granters) == 0 {
		return nil, errors.New("[tokenservice.New] granter registry is required")
	}

	s := &Service{
		repos:     repos,
		granters:  granters,
		tx:        database.NoopTxManager{},
		publisher: events.LogPublisher{},
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Grant issues a token for an authenticated client. Any live token the same
// client holds for the same user is replaced.
//
// A protocol failure raised by the granter still commits the transaction, so
// a consumed code or refresh token stays consumed.
func (s *Service) Grant(ctx context.Context, client *clients.Client, req *oauth2.TokenRequest) (*token.AccessTokenView, error) {
	if client == nil {
		return nil, oauthmodel.InvalidClient("client is required")
	}
	if req == nil {
		return nil, oauthmodel.InvalidRequest("token request is required")
	}
	g, err := s.granters.Resolve(req.GrantType)
	if err != nil {
		return nil, err
	}

	var (
		granted  *token.AuthorizedAccessToken
		grantErr error
	)
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		granted, grantErr = g.CreateAccessToken(ctx, client, req)
		if grantErr != nil {
			if isProtocolError(grantErr) {
				return nil
			}
			return grantErr
		}

		if err := s.evictExisting(ctx, granted); err != nil {
			return err
		}
		if s.enhancer != nil {
			if err := s.enhancer.Enhance(ctx, granted); err != nil {
				return errors.Wrap(err, "enhance token")
			}
		}
		if err := s.repos.AccessTokens.Save(ctx, granted); err != nil {
			return errors.Wrap(err, "save token")
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Grant]")
	}
	if grantErr != nil {
		log.Warn().Err(grantErr).Str("client_id", client.ID.String()).Str("grant_type", req.GrantType.String()).Msg("grant rejected")
		return nil, grantErr
	}

	granted.Record(token.AccessTokenGrantedEvent{
		AccessTokenID: granted.ID,
		Client:        granted.Client,
		Username:      granted.Username,
		GrantType:     granted.GrantType,
	})
	s.publish(ctx, granted.Drain()...)

	log.Debug().
		Str("client_id", granted.Client.String()).
		Str("grant_type", granted.GrantType.String()).
		Str("token_id", granted.ID.String()).
		Str("scope", granted.Scopes.String()).
		Msg("access token granted")
	return token.NewAccessTokenView(granted, s.nowTime()), nil
}

// evictExisting deletes the live token the client already holds for the
// token's user. Concurrent grants may both miss it; the last save wins.
func (s *Service) evictExisting(ctx context.Context, t *token.AuthorizedAccessToken) error {
	existing, err := s.repos.AccessTokens.FindByClientAndUser(ctx, t.Client, t.Username)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "find existing token")
	}
	if _, err := s.repos.AccessTokens.Delete(ctx, existing.ID); err != nil {
		return errors.Wrap(err, "delete existing token")
	}
	log.Debug().Str("client_id", t.Client.String()).Msg("replaced existing access token")
	return nil
}

func (s *Service) find(ctx context.Context, value oauth2.TokenID) (*token.AuthorizedAccessToken, error) {
	t, err := s.repos.AccessTokens.FindByID(ctx, value)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return nil, oauthmodel.TokenNotFound(string(value) + " is not found")
		}
		return nil, errors.Wrap(err, "[Service.find]")
	}
	return t, nil
}

// ReadAccessToken returns a live token. Expired tokens are reported, not deleted.
func (s *Service) ReadAccessToken(ctx context.Context, value oauth2.TokenID) (*token.AccessTokenView, error) {
	t, err := s.find(ctx, value)
	if err != nil {
		return nil, err
	}
	now := s.nowTime()
	if t.IsExpired(now) {
		return nil, oauthmodel.TokenExpired(string(value) + " is expired")
	}
	return token.NewAccessTokenView(t, now), nil
}

// ReadAccessTokenWithClient reads a token on behalf of the client it was issued to.
func (s *Service) ReadAccessTokenWithClient(ctx context.Context, value oauth2.TokenID, clientID oauth2.ClientID) (*token.AccessTokenView, error) {
	t, err := s.find(ctx, value)
	if err != nil {
		return nil, err
	}
	if t.Client != clientID {
		return nil, oauthmodel.InvalidClient("client and access token client are different")
	}
	now := s.nowTime()
	if t.IsExpired(now) {
		return nil, oauthmodel.TokenExpired(string(value) + " is expired")
	}
	return token.NewAccessTokenView(t, now), nil
}

// ReadAccessTokenUser returns the owner of a token without the password hash.
func (s *Service) ReadAccessTokenUser(ctx context.Context, value oauth2.TokenID) (*users.User, error) {
	t, err := s.find(ctx, value)
	if err != nil {
		return nil, err
	}
	if t.Username == "" {
		return nil, oauthmodel.InvalidRequest("access token has no user")
	}
	if s.users == nil {
		return nil, errors.Wrap(ierrors.ErrUnsupported, "[Service.ReadAccessTokenUser] no user lookup configured")
	}
	u, err := s.users.GetByUsername(ctx, t.Username)
	if err != nil {
		return nil, errors.Wrapf(err, "[Service.ReadAccessTokenUser] %s", t.Username)
	}
	return u.Redacted(), nil
}

// Revoke deletes a token on request of the client it was issued to. A
// different caller changes nothing.
func (s *Service) Revoke(ctx context.Context, value oauth2.TokenID, caller oauth2.ClientID) (*token.AccessTokenView, error) {
	t, err := s.find(ctx, value)
	if err != nil {
		return nil, err
	}
	if t.Client != caller {
		return nil, oauthmodel.InvalidClient("client and access token client are different")
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		removed, err := s.repos.AccessTokens.Delete(ctx, t.ID)
		if err != nil {
			return err
		}
		if !removed {
			return oauthmodel.TokenNotFound(string(value) + " is not found")
		}
		return nil
	})
	if err != nil {
		if isProtocolError(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[Service.Revoke]")
	}

	if s.revoked != nil {
		s.revoked.Add(t.ID, t.Expiration)
	}
	s.publish(ctx, token.AccessTokenRevokedEvent{AccessTokenID: t.ID, Client: t.Client})
	log.Debug().Str("client_id", t.Client.String()).Str("token_id", t.ID.String()).Msg("access token revoked")
	return token.NewAccessTokenView(t, s.nowTime()), nil
}

// Introspect reports on a token. Missing, expired and revoked tokens are
// inactive rather than errors.
func (s *Service) Introspect(ctx context.Context, value oauth2.TokenID) (*token.Introspection, error) {
	t, err := s.repos.AccessTokens.FindByID(ctx, value)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return token.Introspect(nil, s.nowTime()), nil
		}
		return nil, errors.Wrap(err, "[Service.Introspect]")
	}
	if s.revoked != nil && s.revoked.IsRevoked(t.ID) {
		return token.Introspect(nil, s.nowTime()), nil
	}
	return token.Introspect(t, s.nowTime()), nil
}

func (s *Service) publish(ctx context.Context, evs ...events.Event) {
	if s.publisher == nil || len(evs) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, evs...); err != nil {
		log.Warn().Err(err).Msg("failed to publish token events")
	}
}

func isProtocolError(err error) bool {
	var oauthErr *oauthmodel.Error
	return errors.As(err, &oauthErr)
}
