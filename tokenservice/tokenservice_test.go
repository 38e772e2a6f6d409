package tokenservice_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth2-core/clients"
	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/jrsteele09/go-oauth2-core/granter"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/jrsteele09/go-oauth2-core/token"
	tokenfakerepo "github.com/jrsteele09/go-oauth2-core/token/repofake"
	"github.com/jrsteele09/go-oauth2-core/tokenservice"
	"github.com/jrsteele09/go-oauth2-core/users"
	fakeuserrepo "github.com/jrsteele09/go-oauth2-core/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testClientID  oauth2.ClientID = "client-1"
	otherClientID oauth2.ClientID = "client-2"
	testUsername  oauth2.Username = "alice"
	testPassword                  = "Passw0rd!"
	scopeA        oauth2.ScopeID  = "A"
	scopeB        oauth2.ScopeID  = "B"
	scopeC        oauth2.ScopeID  = "C"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingTx counts transactions and how many of them rolled back.
type recordingTx struct {
	calls     int
	rollbacks int
}

func (r *recordingTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	err := fn(ctx)
	if err != nil {
		r.rollbacks++
	}
	return err
}

type testFixture struct {
	ctx       context.Context
	now       time.Time
	client    *clients.Client
	access    *tokenfakerepo.FakeTokenRepo
	refresh   *tokenfakerepo.FakeRefreshTokenRepo
	tx        *recordingTx
	revoked   *token.InMemoryRevocationList
	published []events.Event
	service   *tokenservice.Service
}

func setupTestFixture(t *testing.T, options ...tokenservice.Option) *testFixture {
	t.Helper()
	f := &testFixture{ctx: context.Background(), now: testNow, tx: &recordingTx{}}
	nowFunc := func() time.Time { return f.now }

	f.client = clients.New(testClientID, "test client", "owner")
	f.client.Scopes = oauth2.NewScopeSet(scopeA, scopeB)
	f.access, f.refresh = tokenfakerepo.NewFakeTokensRepo()
	f.revoked = token.NewInMemoryRevocationList(nowFunc)

	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	userRepo := fakeuserrepo.NewFakeUserRepo(&users.User{
		Username:     testUsername,
		Email:        "alice@example.com",
		PasswordHash: hash,
		Verified:     true,
	})

	ids := 0
	granterOptions := []granter.Option{
		granter.WithNowTime(nowFunc),
		granter.WithTokenIDGenerator(token.IDGeneratorFunc(func() (string, error) {
			ids++
			return fmt.Sprintf("access-%d", ids), nil
		})),
		granter.WithRefreshTokenIDGenerator(token.IDGeneratorFunc(func() (string, error) {
			ids++
			return fmt.Sprintf("refresh-%d", ids), nil
		})),
	}
	registry := granter.Registry{
		oauth2.PasswordGrant:          granter.NewPasswordGranter(users.NewRepoAuthenticator(userRepo), granterOptions...),
		oauth2.RefreshTokenGrant:      granter.NewRefreshTokenGranter(f.refresh, granterOptions...),
		oauth2.ClientCredentialsGrant: granter.NewClientCredentialsGranter(granterOptions...),
		oauth2.ImplicitGrant:          granter.NewImplicitGranter(granterOptions...),
	}

	defaults := []tokenservice.Option{
		tokenservice.WithNowTime(nowFunc),
		tokenservice.WithTxManager(f.tx),
		tokenservice.WithUserLookup(userRepo),
		tokenservice.WithRevocationList(f.revoked),
		tokenservice.WithPublisher(events.PublisherFunc(func(_ context.Context, evs ...events.Event) error {
			f.published = append(f.published, evs...)
			return nil
		})),
	}
	f.service, err = tokenservice.New(
		tokenservice.Repos{AccessTokens: f.access, RefreshTokens: f.refresh},
		registry,
		append(defaults, options...)...,
	)
	require.NoError(t, err)
	return f
}

func passwordRequest(scopes oauth2.ScopeSet) *oauth2.TokenRequest {
	return &oauth2.TokenRequest{
		GrantType: oauth2.PasswordGrant,
		ClientID:  testClientID,
		Username:  testUsername,
		Password:  testPassword,
		Scopes:    scopes,
	}
}

func TestNew(t *testing.T) {
	access, refresh := tokenfakerepo.NewFakeTokensRepo()
	registry := granter.Registry{oauth2.ImplicitGrant: granter.NewImplicitGranter()}

	_, err := tokenservice.New(tokenservice.Repos{RefreshTokens: refresh}, registry)
	require.Error(t, err)
	_, err = tokenservice.New(tokenservice.Repos{AccessTokens: access}, registry)
	require.Error(t, err)
	_, err = tokenservice.New(tokenservice.Repos{AccessTokens: access, RefreshTokens: refresh}, nil)
	require.Error(t, err)

	s, err := tokenservice.New(tokenservice.Repos{AccessTokens: access, RefreshTokens: refresh}, registry)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestGrant(t *testing.T) {
	t.Run("password grant narrows to the requested scope", func(t *testing.T) {
		f := setupTestFixture(t)

		view, err := f.service.Grant(f.ctx, f.client, passwordRequest(oauth2.NewScopeSet(scopeA)))
		require.NoError(t, err)
		require.Equal(t, oauth2.NewScopeSet(scopeA), view.Scopes)
		require.Equal(t, testClientID, view.Client)
		require.NotNil(t, view.Username)
		require.Equal(t, testUsername, *view.Username)
		require.Equal(t, token.BearerTokenType, view.TokenType)
		require.Equal(t, int64(clients.DefaultAccessTokenValidity.Seconds()), view.ExpiresIn)
		require.NotNil(t, view.RefreshToken)
		require.Equal(t, 1, f.access.Len())
		require.Equal(t, 1, f.refresh.Len())
		require.Equal(t, 1, f.tx.calls)
		require.Zero(t, f.tx.rollbacks)
	})

	t.Run("publishes events after commit", func(t *testing.T) {
		f := setupTestFixture(t)

		view, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)
		require.Contains(t, f.published, events.Event(token.AccessTokenGrantedEvent{
			AccessTokenID: view.Value,
			Client:        testClientID,
			Username:      testUsername,
			GrantType:     oauth2.PasswordGrant,
		}))
		require.Contains(t, f.published, events.Event(token.RefreshTokenIssuedEvent{
			AccessTokenID:  view.Value,
			RefreshTokenID: view.RefreshToken.Value,
			Client:         testClientID,
		}))
	})

	t.Run("second grant leaves one live token", func(t *testing.T) {
		f := setupTestFixture(t)

		first, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)
		second, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)
		require.NotEqual(t, first.Value, second.Value)

		require.Equal(t, 1, f.access.Len())
		require.Equal(t, 1, f.refresh.Len(), "the replaced token's refresh token goes with it")
		_, err = f.service.ReadAccessToken(f.ctx, first.Value)
		require.ErrorIs(t, err, oauthmodel.ErrTokenNotFound)
	})

	t.Run("different users keep separate tokens", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{GrantType: oauth2.ImplicitGrant, ClientID: testClientID, Username: "bob"})
		require.NoError(t, err)
		_, err = f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{GrantType: oauth2.ImplicitGrant, ClientID: testClientID, Username: "carol"})
		require.NoError(t, err)
		_, err = f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{GrantType: oauth2.ClientCredentialsGrant, ClientID: testClientID})
		require.NoError(t, err)
		require.Equal(t, 3, f.access.Len())
	})

	t.Run("refresh grant replaces the token", func(t *testing.T) {
		f := setupTestFixture(t)

		first, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)

		f.now = f.now.Add(time.Minute)
		second, err := f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{
			GrantType:    oauth2.RefreshTokenGrant,
			ClientID:     testClientID,
			RefreshToken: first.RefreshToken.Value,
			Scopes:       oauth2.NewScopeSet(scopeB),
		})
		require.NoError(t, err)
		require.Equal(t, oauth2.NewScopeSet(scopeB), second.Scopes)
		require.Equal(t, 1, f.access.Len())

		_, err = f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{
			GrantType:    oauth2.RefreshTokenGrant,
			ClientID:     testClientID,
			RefreshToken: first.RefreshToken.Value,
		})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant, "a refresh token is redeemed once")
	})

	t.Run("rejected refresh still consumes the refresh token", func(t *testing.T) {
		f := setupTestFixture(t)

		first, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)

		_, err = f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{
			GrantType:    oauth2.RefreshTokenGrant,
			ClientID:     testClientID,
			RefreshToken: first.RefreshToken.Value,
			Scopes:       oauth2.NewScopeSet(scopeC),
		})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidGrant)
		require.Zero(t, f.tx.rollbacks, "protocol errors commit the consumption")
		require.Zero(t, f.refresh.Len())
		require.Equal(t, 1, f.access.Len())
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := setupTestFixture(t)

		req := passwordRequest(nil)
		req.Password = "wrong"
		_, err := f.service.Grant(f.ctx, f.client, req)
		require.ErrorIs(t, err, oauthmodel.ErrUserDeniedAuthorization)
		require.Zero(t, f.access.Len())
		require.Empty(t, f.published)
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{GrantType: oauth2.AuthorizationCodeGrant})
		require.ErrorIs(t, err, oauthmodel.ErrUnsupportedGrantType)
		require.Zero(t, f.tx.calls)
	})

	t.Run("enhancer runs before save", func(t *testing.T) {
		enhancer := token.EnhancerFunc(func(_ context.Context, tok *token.AuthorizedAccessToken) error {
			tok.PutAdditionalInfo("tenant", "acme")
			return nil
		})
		f := setupTestFixture(t, tokenservice.WithEnhancer(enhancer))

		view, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)
		require.Equal(t, map[string]string{"tenant": "acme"}, view.AdditionalInfo)

		stored, err := f.access.FindByID(f.ctx, view.Value)
		require.NoError(t, err)
		require.Equal(t, "acme", stored.AdditionalInfo["tenant"])
	})

	t.Run("enhancer failure rolls back", func(t *testing.T) {
		enhancer := token.EnhancerFunc(func(context.Context, *token.AuthorizedAccessToken) error {
			return fmt.Errorf("signer unavailable")
		})
		f := setupTestFixture(t, tokenservice.WithEnhancer(enhancer))

		_, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.ErrorContains(t, err, "signer unavailable")
		require.Equal(t, 1, f.tx.rollbacks)
		require.Zero(t, f.access.Len())
	})
}

func TestReadAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	granted, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
	require.NoError(t, err)

	t.Run("live", func(t *testing.T) {
		view, err := f.service.ReadAccessToken(f.ctx, granted.Value)
		require.NoError(t, err)
		require.Equal(t, granted.Value, view.Value)
		require.False(t, view.IsExpired)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.service.ReadAccessToken(f.ctx, "missing")
		require.ErrorIs(t, err, oauthmodel.ErrTokenNotFound)
	})

	t.Run("with client", func(t *testing.T) {
		_, err := f.service.ReadAccessTokenWithClient(f.ctx, granted.Value, testClientID)
		require.NoError(t, err)
		_, err = f.service.ReadAccessTokenWithClient(f.ctx, granted.Value, otherClientID)
		require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
	})

	t.Run("user", func(t *testing.T) {
		u, err := f.service.ReadAccessTokenUser(f.ctx, granted.Value)
		require.NoError(t, err)
		require.Equal(t, testUsername, u.Username)
		require.Empty(t, u.PasswordHash)
	})

	t.Run("expired is reported and kept", func(t *testing.T) {
		f.now = testNow.Add(clients.DefaultAccessTokenValidity)
		defer func() { f.now = testNow }()

		_, err := f.service.ReadAccessToken(f.ctx, granted.Value)
		require.ErrorIs(t, err, oauthmodel.ErrTokenExpired)
		_, err = f.service.ReadAccessTokenWithClient(f.ctx, granted.Value, testClientID)
		require.ErrorIs(t, err, oauthmodel.ErrTokenExpired)
		require.Equal(t, 1, f.access.Len())
	})
}

func TestReadAccessTokenUserClientOnly(t *testing.T) {
	f := setupTestFixture(t)
	granted, err := f.service.Grant(f.ctx, f.client, &oauth2.TokenRequest{GrantType: oauth2.ClientCredentialsGrant, ClientID: testClientID})
	require.NoError(t, err)
	require.Nil(t, granted.Username)
	require.Nil(t, granted.RefreshToken)

	_, err = f.service.ReadAccessTokenUser(f.ctx, granted.Value)
	require.ErrorIs(t, err, oauthmodel.ErrInvalidRequest)
}

func TestRevoke(t *testing.T) {
	t.Run("foreign client changes nothing", func(t *testing.T) {
		f := setupTestFixture(t)
		granted, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)
		calls := f.tx.calls

		_, err = f.service.Revoke(f.ctx, granted.Value, otherClientID)
		require.ErrorIs(t, err, oauthmodel.ErrInvalidClient)
		require.Equal(t, calls, f.tx.calls)
		require.Equal(t, 1, f.access.Len())
		require.Equal(t, 1, f.refresh.Len())
		require.False(t, f.revoked.IsRevoked(granted.Value))
	})

	t.Run("owning client", func(t *testing.T) {
		f := setupTestFixture(t)
		granted, err := f.service.Grant(f.ctx, f.client, passwordRequest(nil))
		require.NoError(t, err)

		view, err := f.service.Revoke(f.ctx, granted.Value, testClientID)
		require.NoError(t, err)
		require.Equal(t, granted.Value, view.Value)
		require.Zero(t, f.access.Len())
		require.Zero(t, f.refresh.Len())
		require.True(t, f.revoked.IsRevoked(granted.Value))
		require.Contains(t, f.published, events.Event(token.AccessTokenRevokedEvent{AccessTokenID: granted.Value, Client: testClientID}))

		_, err = f.service.Revoke(f.ctx, granted.Value, testClientID)
		require.ErrorIs(t, err, oauthmodel.ErrTokenNotFound)
	})
}

func TestIntrospect(t *testing.T) {
	f := setupTestFixture(t)
	granted, err := f.service.Grant(f.ctx, f.client, passwordRequest(oauth2.NewScopeSet(scopeA, scopeB)))
	require.NoError(t, err)

	got, err := f.service.Introspect(f.ctx, granted.Value)
	require.NoError(t, err)
	require.True(t, got.Active)
	require.Equal(t, "A B", got.Scope)
	require.Equal(t, testUsername, got.Username)

	got, err = f.service.Introspect(f.ctx, "missing")
	require.NoError(t, err)
	require.False(t, got.Active)

	f.now = testNow.Add(time.Hour)
	got, err = f.service.Introspect(f.ctx, granted.Value)
	require.NoError(t, err)
	require.False(t, got.Active)
}
