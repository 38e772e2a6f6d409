package users

import (
	"context"
	"slices"
	"time"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Principal is the identity established by a successful authentication.
type Principal struct {
	Name        oauth2.Username
	Authorities []string
}

// Authenticator checks resource owner credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username oauth2.Username, password string) (*Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, username oauth2.Username, password string) (*Principal, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, username oauth2.Username, password string) (*Principal, error) {
	return f(ctx, username, password)
}

var _ Authenticator = (*RepoAuthenticator)(nil)

// RepoAuthenticator authenticates against a user store with bcrypt hashes.
type RepoAuthenticator struct {
	repo    UserRepo
	nowTime func() time.Time
}

func NewRepoAuthenticator(repo UserRepo) *RepoAuthenticator {
	return &RepoAuthenticator{repo: repo, nowTime: time.Now}
}

func (a *RepoAuthenticator) Authenticate(ctx context.Context, username oauth2.Username, password string) (*Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := a.repo.GetByUsername(ctx, username)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrNotFound) {
			return nil, errors.Wrapf(ierrors.ErrInvalidCredentials, "[RepoAuthenticator.Authenticate] %s", username)
		}
		return nil, errors.Wrap(err, "[RepoAuthenticator.Authenticate] lookup")
	}
	if user.Blocked {
		return nil, errors.Wrapf(ierrors.ErrUserBlocked, "[RepoAuthenticator.Authenticate] %s", username)
	}
	if !user.Verified {
		return nil, errors.Wrapf(ierrors.ErrUserNotVerified, "[RepoAuthenticator.Authenticate] %s", username)
	}
	if !user.CheckPassword(password) {
		return nil, errors.Wrapf(ierrors.ErrInvalidCredentials, "[RepoAuthenticator.Authenticate] %s", username)
	}

	if err := a.repo.SetLastLogin(ctx, user.Username, a.nowTime()); err != nil {
		log.Warn().Err(err).Str("username", user.Username.String()).Msg("failed to record last login")
	}
	return &Principal{Name: user.Username, Authorities: slices.Clone(user.Authorities)}, nil
}
