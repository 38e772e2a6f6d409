package scopes

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/authorities"
	"github.com/jrsteele09/go-oauth2-core/events"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Lookup = (*Service)(nil)

type RegisterRequest struct {
	ScopeID               oauth2.ScopeID
	Description           string
	AccessibleAuthorities []string
}

type ModifyRequest struct {
	Description                 string
	NewAccessibleAuthorities    []string
	RemoveAccessibleAuthorities []string
}

// Service loads scope details and manages the scope store.
type Service struct {
	repo        Repo
	authorities authorities.Lookup
	policy      func(ctx context.Context) Policy
	publisher   events.Publisher
}

type ServiceOption func(*Service)

// WithPolicy replaces the default policy factory.
func WithPolicy(policy func(ctx context.Context) Policy) ServiceOption {
	return func(s *Service) {
		s.policy = policy
	}
}

func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(repo Repo, lookup authorities.Lookup, opts ...ServiceOption) *Service {
	s := &Service{
		repo:        repo,
		authorities: lookup,
		publisher:   events.LogPublisher{},
	}
	s.policy = func(ctx context.Context) Policy {
		return DefaultPolicy(ctx, s.authorities)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByIDs returns the registered scopes among ids.
func (s *Service) FindByIDs(ctx context.Context, ids oauth2.ScopeSet) ([]*Scope, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.FindByIDs]")
	}
	return found, nil
}

// LoadScopeDetails returns the registered scopes among ids.
func (s *Service) LoadScopeDetails(ctx context.Context, ids oauth2.ScopeSet) ([]*Scope, error) {
	return s.FindByIDs(ctx, ids)
}

// ReadAccessibleScopes lists the scopes any of the given authorities may access.
func (s *Service) ReadAccessibleScopes(ctx context.Context, authorityCodes []string) ([]*Scope, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ReadAccessibleScopes]")
	}
	accessible := make([]*Scope, 0, len(all))
	for _, scope := range all {
		if scope.IsAccessible(authorityCodes) {
			accessible = append(accessible, scope)
		}
	}
	return accessible, nil
}

func (s *Service) Get(ctx context.Context, id oauth2.ScopeID) (*Scope, error) {
	scope, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "[Service.Get] scope %s", id)
	}
	return scope, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Scope, error) {
	n, err := s.repo.Count(ctx, req.ScopeID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] count")
	}
	if n > 0 {
		return nil, errors.Wrapf(ierrors.ErrAlreadyExists, "[Service.Register] scope %s", req.ScopeID)
	}

	scope := New(req.ScopeID, req.Description)
	for _, code := range req.AccessibleAuthorities {
		scope.AddAccessibleAuthority(code)
	}
	if err := scope.Validate(s.policy(ctx)); err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}
	if err := s.save(ctx, scope); err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}
	log.Info().Str("scope", scope.ID.String()).Msg("scope registered")
	return scope, nil
}

func (s *Service) Modify(ctx context.Context, id oauth2.ScopeID, req ModifyRequest) (*Scope, error) {
	scope, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scope.Description = req.Description
	for _, code := range req.RemoveAccessibleAuthorities {
		scope.RemoveAccessibleAuthority(code)
	}
	for _, code := range req.NewAccessibleAuthorities {
		scope.AddAccessibleAuthority(code)
	}
	if err := scope.Validate(s.policy(ctx)); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify]")
	}
	if err := s.save(ctx, scope); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify]")
	}
	return scope, nil
}

func (s *Service) Remove(ctx context.Context, id oauth2.ScopeID) (*Scope, error) {
	scope, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, errors.Wrap(err, "[Service.Remove] delete")
	}
	log.Info().Str("scope", id.String()).Msg("scope removed")
	return scope, nil
}

func (s *Service) save(ctx context.Context, scope *Scope) error {
	if err := s.repo.Upsert(ctx, scope); err != nil {
		return errors.Wrap(err, "save")
	}
	if pending := scope.Drain(); len(pending) > 0 && s.publisher != nil {
		if err := s.publisher.Publish(ctx, pending...); err != nil {
			log.Warn().Err(err).Str("scope", scope.ID.String()).Msg("publish scope events")
		}
	}
	return nil
}
