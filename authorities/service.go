package authorities

import (
	"context"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Lookup = (*Service)(nil)

// RegisterRequest describes a new authority.
type RegisterRequest struct {
	Code        string
	Description string
	Basic       bool
}

type ModifyRequest struct {
	Description string
	Basic       bool
}

// Service manages authorities.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Count(ctx context.Context, code string) (int, error) {
	return s.repo.Count(ctx, code)
}

func (s *Service) Get(ctx context.Context, code string) (*Authority, error) {
	a, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, errors.Wrapf(err, "[Service.Get] authority %s", code)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]*Authority, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindByCodes(ctx context.Context, codes []string) ([]*Authority, error) {
	return s.repo.FindByCodes(ctx, codes)
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Authority, error) {
	if req.Code == "" {
		return nil, errors.New("[Service.Register] authority code is required")
	}

	n, err := s.repo.Count(ctx, req.Code)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] count")
	}
	if n > 0 {
		return nil, errors.Wrapf(ierrors.ErrAlreadyExists, "[Service.Register] authority %s", req.Code)
	}

	a := &Authority{Code: req.Code, Description: req.Description, Basic: req.Basic}
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] save")
	}
	log.Info().Str("authority", a.Code).Msg("authority registered")
	return a, nil
}

func (s *Service) Modify(ctx context.Context, code string, req ModifyRequest) (*Authority, error) {
	a, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	a.Description = req.Description
	a.Basic = req.Basic
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, errors.Wrap(err, "[Service.Modify] save")
	}
	return a, nil
}

func (s *Service) Remove(ctx context.Context, code string) (*Authority, error) {
	a, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return nil, errors.Wrap(err, "[Service.Remove] delete")
	}
	log.Info().Str("authority", code).Msg("authority removed")
	return a, nil
}
