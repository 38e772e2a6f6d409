package authcode

import (
	"context"

	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

// Repo stores authorization codes until they are redeemed.
type Repo interface {
	Save(ctx context.Context, code *AuthorizationCode) error
	// Consume atomically loads and deletes a code, returning
	// errors.ErrNotFound when it does not exist.
	Consume(ctx context.Context, code oauth2.AuthorizationCode) (*AuthorizationCode, error)
}
