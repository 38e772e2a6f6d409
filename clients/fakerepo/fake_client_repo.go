package fakeclientrepo

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth2-core/clients"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[oauth2.ClientID]*clients.Client
	lock    sync.RWMutex
}

func NewFakeClientRepo(seed ...*clients.Client) *FakeClientRepo {
	r := &FakeClientRepo{
		clients: make(map[oauth2.ClientID]*clients.Client),
	}
	for _, c := range seed {
		r.clients[c.ID] = clone(c)
	}
	return r
}

func clone(c *clients.Client) *clients.Client {
	cp := *c
	cp.RedirectURIs = slices.Clone(c.RedirectURIs)
	cp.GrantTypes = slices.Clone(c.GrantTypes)
	cp.Scopes = c.Scopes.Clone()
	return &cp
}

func (r *FakeClientRepo) Count(_ context.Context, clientID oauth2.ClientID) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if _, ok := r.clients[clientID]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *FakeClientRepo) Upsert(_ context.Context, clientData *clients.Client) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.clients[clientData.ID] = clone(clientData)
	return nil
}

func (r *FakeClientRepo) Delete(_ context.Context, clientID oauth2.ClientID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.clients[clientID]; !ok {
		return ierrors.ErrNotFound
	}
	delete(r.clients, clientID)
	return nil
}

func (r *FakeClientRepo) Get(_ context.Context, clientID oauth2.ClientID) (*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	client, ok := r.clients[clientID]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return clone(client), nil
}

func (r *FakeClientRepo) List(_ context.Context, owner string, offset, limit int) ([]*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	owned := make([]*clients.Client, 0)
	for _, v := range r.clients {
		if v.Owner == owner {
			owned = append(owned, clone(v))
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].ID < owned[j].ID
	})

	if offset >= len(owned) {
		return nil, nil
	}
	end := len(owned)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return owned[offset:end], nil
}
