package tokenfakerepo

import (
	"context"
	"sync"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
)

var (
	_ token.AccessTokenRepo  = (*FakeTokenRepo)(nil)
	_ token.RefreshTokenRepo = (*FakeRefreshTokenRepo)(nil)
)

// store is shared by the access and refresh views so that deleting an access
// token also removes its refresh token.
type store struct {
	lock     sync.RWMutex
	tokens   map[oauth2.TokenID]*token.AuthorizedAccessToken
	owners   map[string]oauth2.TokenID // by ComposeUniqueKey
	refreshs map[oauth2.TokenID]*token.AuthorizedRefreshToken
}

type FakeTokenRepo struct {
	*store
}

type FakeRefreshTokenRepo struct {
	*store
}

// NewFakeTokensRepo returns an access token repo and the refresh token repo
// backed by the same in-memory store.
func NewFakeTokensRepo() (*FakeTokenRepo, *FakeRefreshTokenRepo) {
	s := &store{
		tokens:   make(map[oauth2.TokenID]*token.AuthorizedAccessToken),
		owners:   make(map[string]oauth2.TokenID),
		refreshs: make(map[oauth2.TokenID]*token.AuthorizedRefreshToken),
	}
	return &FakeTokenRepo{store: s}, &FakeRefreshTokenRepo{store: s}
}

func (tr *FakeTokenRepo) FindByID(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedAccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	t, ok := tr.tokens[id]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return t, nil
}

// FindByClientAndUser looks up the slot of a client and user. Without a user
// the slot is the client credentials one, the only grant issuing client-only
// tokens.
func (tr *FakeTokenRepo) FindByClientAndUser(ctx context.Context, client oauth2.ClientID, username oauth2.Username) (*token.AuthorizedAccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	id, ok := tr.owners[token.ComposeUniqueKey(client, username, oauth2.ClientCredentialsGrant)]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return tr.tokens[id], nil
}

func (tr *FakeTokenRepo) Save(ctx context.Context, t *token.AuthorizedAccessToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[t.ID] = t
	tr.owners[t.ComposeUniqueKey()] = t.ID
	if t.RefreshToken != nil {
		tr.refreshs[t.RefreshToken.ID] = t.RefreshToken
	}
	return nil
}

func (tr *FakeTokenRepo) Delete(ctx context.Context, id oauth2.TokenID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tr.lock.Lock()
	defer tr.lock.Unlock()

	t, ok := tr.tokens[id]
	if !ok {
		return false, nil
	}
	delete(tr.tokens, id)

	key := t.ComposeUniqueKey()
	if tr.owners[key] == id {
		delete(tr.owners, key)
	}
	if t.RefreshToken != nil {
		delete(tr.refreshs, t.RefreshToken.ID)
	}
	return true, nil
}

// Len returns the number of stored access tokens.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}

func (rr *FakeRefreshTokenRepo) FindByID(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedRefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rr.lock.RLock()
	defer rr.lock.RUnlock()

	rt, ok := rr.refreshs[id]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	return rt, nil
}

func (rr *FakeRefreshTokenRepo) Consume(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedRefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rr.lock.Lock()
	defer rr.lock.Unlock()

	rt, ok := rr.refreshs[id]
	if !ok {
		return nil, ierrors.ErrNotFound
	}
	delete(rr.refreshs, id)
	return rt, nil
}

// Len returns the number of stored refresh tokens.
func (rr *FakeRefreshTokenRepo) Len() int {
	rr.lock.RLock()
	defer rr.lock.RUnlock()
	return len(rr.refreshs)
}
