package fakescoperepo

import (
	"context"
	"slices"
	"sort"
	"sync"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/scopes"
)

var _ scopes.Repo = (*FakeScopeRepo)(nil)

type FakeScopeRepo struct {
	scopes map[oauth2.ScopeID]*scopes.Scope
	lock   sync.RWMutex
}

func NewFakeScopeRepo(seed ...*scopes.Scope) *FakeScopeRepo {
	r := &FakeScopeRepo{
		scopes: make(map[oauth2.ScopeID]*scopes.Scope),
	}
	for _, s := range seed {
		r.scopes[s.ID] = clone(s)
	}
	return r
}

func clone(s *scopes.Scope) *scopes.Scope {
	return &scopes.Scope{
		ID:                    s.ID,
		Description:           s.Description,
		AccessibleAuthorities: slices.Clone(s.AccessibleAuthorities),
	}
}

func (r *FakeScopeRepo) Count(_ context.Context, id oauth2.ScopeID) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if _, ok := r.scopes[id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *FakeScopeRepo) Get(_ context.Context, id oauth2.ScopeID) (*scopes.Scope, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s, ok := r.scopes[id]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return clone(s), nil
}

func (r *FakeScopeRepo) List(_ context.Context) ([]*scopes.Scope, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*scopes.Scope, 0, len(r.scopes))
	for _, s := range r.scopes {
		list = append(list, clone(s))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *FakeScopeRepo) FindByIDs(_ context.Context, ids oauth2.ScopeSet) ([]*scopes.Scope, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	found := make([]*scopes.Scope, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.scopes[id]; ok {
			found = append(found, clone(s))
		}
	}
	return found, nil
}

func (r *FakeScopeRepo) Upsert(_ context.Context, s *scopes.Scope) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.scopes[s.ID] = clone(s)
	return nil
}

func (r *FakeScopeRepo) Delete(_ context.Context, id oauth2.ScopeID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.scopes[id]; !ok {
		return ierrors.ErrNotFound
	}
	delete(r.scopes, id)
	return nil
}
