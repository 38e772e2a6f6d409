package fakeauthorityrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth2-core/authorities"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
)

var _ authorities.Repo = (*FakeAuthorityRepo)(nil)

type FakeAuthorityRepo struct {
	authorities map[string]*authorities.Authority
	lock        sync.RWMutex
}

func NewFakeAuthorityRepo(seed ...*authorities.Authority) *FakeAuthorityRepo {
	r := &FakeAuthorityRepo{
		authorities: make(map[string]*authorities.Authority),
	}
	for _, a := range seed {
		r.authorities[a.Code] = a
	}
	return r
}

func (r *FakeAuthorityRepo) Count(_ context.Context, code string) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if _, ok := r.authorities[code]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *FakeAuthorityRepo) Get(_ context.Context, code string) (*authorities.Authority, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	a, ok := r.authorities[code]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *FakeAuthorityRepo) List(_ context.Context) ([]*authorities.Authority, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*authorities.Authority, 0, len(r.authorities))
	for _, a := range r.authorities {
		cp := *a
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list, nil
}

func (r *FakeAuthorityRepo) FindByCodes(_ context.Context, codes []string) ([]*authorities.Authority, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	found := make([]*authorities.Authority, 0, len(codes))
	for _, c := range codes {
		if a, ok := r.authorities[c]; ok {
			cp := *a
			found = append(found, &cp)
		}
	}
	return found, nil
}

func (r *FakeAuthorityRepo) Upsert(_ context.Context, a *authorities.Authority) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	cp := *a
	r.authorities[a.Code] = &cp
	return nil
}

func (r *FakeAuthorityRepo) Delete(_ context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.authorities[code]; !ok {
		return ierrors.ErrNotFound
	}
	delete(r.authorities, code)
	return nil
}
