package fakecoderepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-oauth2-core/authcode"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

var _ authcode.Repo = (*FakeCodeRepo)(nil)

type FakeCodeRepo struct {
	codes map[oauth2.AuthorizationCode]*authcode.AuthorizationCode
	lock  sync.Mutex
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{
		codes: make(map[oauth2.AuthorizationCode]*authcode.AuthorizationCode),
	}
}

func (r *FakeCodeRepo) Save(ctx context.Context, code *authcode.AuthorizationCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.codes[code.Code]; ok {
		return ierrors.ErrAlreadyExists
	}
	r.codes[code.Code] = code
	return nil
}

func (r *FakeCodeRepo) Consume(ctx context.Context, code oauth2.AuthorizationCode) (*authcode.AuthorizationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	ac, ok := r.codes[code]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	delete(r.codes, code)
	return ac, nil
}

func (r *FakeCodeRepo) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.codes)
}
