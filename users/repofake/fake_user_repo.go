package fakeuserrepo

import (
	"context"
	"slices"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users map[oauth2.Username]*users.User
	lock  sync.RWMutex
}

func NewFakeUserRepo(seed ...*users.User) *FakeUserRepo {
	r := &FakeUserRepo{
		users: make(map[oauth2.Username]*users.User),
	}
	for _, u := range seed {
		r.users[u.Username] = clone(u)
	}
	return r
}

func clone(u *users.User) *users.User {
	cp := *u
	cp.Authorities = slices.Clone(u.Authorities)
	return &cp
}

func (ur *FakeUserRepo) Upsert(ctx context.Context, user *users.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.users[user.Username] = clone(user)
	return nil
}

func (ur *FakeUserRepo) Delete(ctx context.Context, username oauth2.Username) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if _, ok := ur.users[username]; !ok {
		return ierrors.ErrNotFound
	}
	delete(ur.users, username)
	return nil
}

func (ur *FakeUserRepo) GetByUsername(ctx context.Context, username oauth2.Username) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	u, ok := ur.users[username]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return clone(u), nil
}

func (ur *FakeUserRepo) update(ctx context.Context, username oauth2.Username, fn func(u *users.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()
	u, ok := ur.users[username]
	if !ok {
		return ierrors.ErrNotFound
	}
	fn(u)
	return nil
}

func (ur *FakeUserRepo) SetBlocked(ctx context.Context, username oauth2.Username, blocked bool) error {
	return ur.update(ctx, username, func(u *users.User) { u.Blocked = blocked })
}

func (ur *FakeUserRepo) SetVerified(ctx context.Context, username oauth2.Username, verified bool) error {
	return ur.update(ctx, username, func(u *users.User) { u.Verified = verified })
}

func (ur *FakeUserRepo) SetLastLogin(ctx context.Context, username oauth2.Username, at time.Time) error {
	return ur.update(ctx, username, func(u *users.User) { u.LastLogin = at })
}
