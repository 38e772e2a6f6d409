package redisrepo_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-oauth2-core/authcode"
	"github.com/jrsteele09/go-oauth2-core/authcode/redisrepo"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testPrefix = "oauth2:"

type testFixture struct {
	server *miniredis.Miniredis
	repo   *redisrepo.RedisCodeRepo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	repo := redisrepo.NewWithClient(client, testPrefix)
	t.Cleanup(func() { _ = repo.Close() })
	return &testFixture{server: server, repo: repo}
}

func newCode(value string) *authcode.AuthorizationCode {
	ac := authcode.New(oauth2.AuthorizationRequest{
		ClientID:            "client-1",
		Username:            "alice",
		RedirectURI:         "http://localhost/cb",
		Scopes:              oauth2.NewScopeSet("read", "write"),
		ResponseType:        oauth2.CodeResponseType,
		CodeChallenge:       "challenge",
		CodeChallengeMethod: oauth2.CodeMethodTypeS256,
	}, time.Now(), time.Minute)
	ac.Code = oauth2.AuthorizationCode(value)
	return ac
}

func TestSaveAndConsume(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	ac := newCode("code-1")

	require.NoError(t, f.repo.Save(ctx, ac))
	require.True(t, f.server.Exists(testPrefix+"authcode:code-1"))
	require.Greater(t, f.server.TTL(testPrefix+"authcode:code-1"), time.Duration(0))

	require.ErrorIs(t, f.repo.Save(ctx, ac), ierrors.ErrAlreadyExists)

	got, err := f.repo.Consume(ctx, "code-1")
	require.NoError(t, err)
	require.Equal(t, ac.ClientID, got.ClientID)
	require.Equal(t, ac.ApprovedScopes, got.ApprovedScopes)
	require.Equal(t, ac.CodeChallengeMethod, got.CodeChallengeMethod)
	require.True(t, ac.Expiration.Equal(got.Expiration))

	_, err = f.repo.Consume(ctx, "code-1")
	require.ErrorIs(t, err, ierrors.ErrNotFound)
}

func TestCodeExpiresWithTTL(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Save(ctx, newCode("code-1")))

	f.server.FastForward(2 * time.Minute)

	_, err := f.repo.Consume(ctx, "code-1")
	require.ErrorIs(t, err, ierrors.ErrNotFound)
}

func TestSaveExpiredCode(t *testing.T) {
	f := setupTestFixture(t)
	ac := newCode("code-1")
	ac.Expiration = time.Now().Add(-time.Second)
	require.Error(t, f.repo.Save(context.Background(), ac))
}

func TestConcurrentConsume(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Save(ctx, newCode("code-1")))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.repo.Consume(ctx, "code-1"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
}
