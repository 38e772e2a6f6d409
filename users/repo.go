package users

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, username oauth2.Username) error
	GetByUsername(ctx context.Context, username oauth2.Username) (*User, error)
	SetBlocked(ctx context.Context, username oauth2.Username, blocked bool) error
	SetVerified(ctx context.Context, username oauth2.Username, verified bool) error
	SetLastLogin(ctx context.Context, username oauth2.Username, at time.Time) error
}

// Lookup resolves the owner of a token.
type Lookup interface {
	GetByUsername(ctx context.Context, username oauth2.Username) (*User, error)
}
