package clients

import (
	"context"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service manages clients on behalf of their owners.
type Service struct {
	repo   Repo
	scopes ScopeLookup
	policy func(ctx context.Context) Policy
}

type ServiceOption func(*Service)

// WithPolicy replaces the default policy factory.
func WithPolicy(policy func(ctx context.Context) Policy) ServiceOption {
	return func(s *Service) {
		s.policy = policy
	}
}

func NewService(repo Repo, lookup ScopeLookup, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, scopes: lookup}
	s.policy = func(ctx context.Context) Policy {
		return DefaultPolicy(ctx, s.scopes)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Count(ctx context.Context, clientID oauth2.ClientID) (int, error) {
	return s.repo.Count(ctx, clientID)
}

func (s *Service) Get(ctx context.Context, clientID oauth2.ClientID) (*Client, error) {
	c, err := s.repo.Get(ctx, clientID)
	if err != nil {
		return nil, errors.Wrapf(err, "[Service.Get] client %s", clientID)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, owner string, offset, limit int) ([]*Client, error) {
	return s.repo.List(ctx, owner, offset, limit)
}

func (s *Service) Register(ctx context.Context, owner string, req RegisterRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}

	id := oauth2.ClientID(req.ClientID)
	n, err := s.repo.Count(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] count")
	}
	if n > 0 {
		return nil, errors.Wrapf(ierrors.ErrAlreadyExists, "[Service.Register] client %s", id)
	}

	c := New(id, req.ClientName, owner)
	for _, g := range req.GrantTypes {
		c.AddGrantType(oauth2.GrantType(g))
	}
	c.Scopes = oauth2.ScopeSetFromStrings(req.Scopes)
	for _, uri := range req.RedirectURIs {
		c.AddRedirectURI(uri)
	}
	if req.AccessTokenValidity > 0 {
		c.AccessTokenValidity = req.AccessTokenValidity
	}
	if req.RefreshTokenValidity > 0 {
		c.RefreshTokenValidity = req.RefreshTokenValidity
	}

	if err := c.Validate(s.policy(ctx)); err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}
	if err := c.SetSecret(req.Secret); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] hash secret")
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] save")
	}
	log.Info().Str("client", c.ID.String()).Str("owner", owner).Msg("client registered")
	return c, nil
}

func (s *Service) Modify(ctx context.Context, owner string, clientID oauth2.ClientID, req ModifyRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify]")
	}
	c, err := s.owned(ctx, owner, clientID)
	if err != nil {
		return nil, err
	}

	c.Name = req.ClientName
	for _, uri := range req.RemoveRedirectURIs {
		c.RemoveRedirectURI(uri)
	}
	for _, uri := range req.NewRedirectURIs {
		c.AddRedirectURI(uri)
	}
	for _, g := range req.RemoveGrantTypes {
		c.RemoveGrantType(oauth2.GrantType(g))
	}
	for _, g := range req.NewGrantTypes {
		c.AddGrantType(oauth2.GrantType(g))
	}
	for _, id := range req.RemoveScopes {
		c.RemoveScope(oauth2.ScopeID(id))
	}
	for _, id := range req.NewScopes {
		c.AddScope(oauth2.ScopeID(id))
	}

	if err := c.Validate(s.policy(ctx)); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify]")
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify] save")
	}
	return c, nil
}

// ChangeSecret replaces the secret after checking the existing one.
func (s *Service) ChangeSecret(ctx context.Context, owner string, clientID oauth2.ClientID, req ChangeSecretRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.ChangeSecret]")
	}
	c, err := s.owned(ctx, owner, clientID)
	if err != nil {
		return nil, err
	}
	if !c.SecretMatches(req.ExistingSecret) {
		return nil, errors.Wrap(ierrors.ErrInvalidCredentials, "[Service.ChangeSecret] existing secret")
	}
	if err := c.SetSecret(req.NewSecret); err != nil {
		return nil, errors.Wrap(err, "[Service.ChangeSecret] hash secret")
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, errors.Wrap(err, "[Service.ChangeSecret] save")
	}
	log.Info().Str("client", c.ID.String()).Msg("client secret changed")
	return c, nil
}

func (s *Service) Remove(ctx context.Context, owner string, clientID oauth2.ClientID) (*Client, error) {
	c, err := s.owned(ctx, owner, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return nil, errors.Wrap(err, "[Service.Remove] delete")
	}
	log.Info().Str("client", clientID.String()).Msg("client removed")
	return c, nil
}

func (s *Service) owned(ctx context.Context, owner string, clientID oauth2.ClientID) (*Client, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.Owner != owner {
		return nil, errors.Wrapf(ierrors.ErrOwnerMismatch, "[Service] client %s", clientID)
	}
	return c, nil
}
