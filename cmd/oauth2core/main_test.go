package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-oauth2-core/internal/config"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testFixture struct {
	store  string
	out    bytes.Buffer
	errOut bytes.Buffer
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("JWT_SIGNING_SECRET", "")
	t.Setenv("JWT_SIGNER_TYPE", "HS256")
	return &testFixture{store: storeMemory}
}

func (f *testFixture) run(args ...string) error {
	app := newApp(config.New())
	app.Writer = &f.out
	app.ErrWriter = &f.errOut
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return app.Run(context.Background(), append([]string{"oauth2core", "--quiet", "--store", f.store}, args...))
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	return coder.ExitCode()
}

func TestGrantCommand(t *testing.T) {
	t.Run("client credentials", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("grant", "--grant-type", "client_credentials", "--client-id", "svc-1", "--client-scope", "api.read", "--client-scope", "api.write", "--scope", "api.read"))

		var resp oauth2.TokenResponse
		require.NoError(t, json.Unmarshal(f.out.Bytes(), &resp))
		require.NotEmpty(t, resp.AccessToken)
		require.Equal(t, "Bearer", resp.TokenType)
		require.Equal(t, "api.read", resp.Scope)
		require.Equal(t, int64(600), resp.ExpiresIn)
		require.Empty(t, resp.RefreshToken)
	})

	t.Run("password with metrics", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("grant", "--grant-type", "password", "--client-id", "web-1", "--client-scope", "profile",
			"--username", "alice", "--password", "Passw0rd!", "--user", "alice:Passw0rd!", "--metrics"))

		var resp oauth2.TokenResponse
		require.NoError(t, json.Unmarshal(f.out.Bytes(), &resp))
		require.NotEmpty(t, resp.RefreshToken)
		require.Contains(t, f.errOut.String(), `grants_total{grant_type="password",outcome="success"} 1`)
	})

	t.Run("bad password", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.run("grant", "--grant-type", "password", "--client-id", "web-1", "--client-scope", "profile",
			"--username", "alice", "--password", "nope", "--user", "alice:Passw0rd!")
		require.Equal(t, oauthFailureExitCode, exitCode(t, err))
		require.Contains(t, f.out.String(), `"error": "access_denied"`)
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.run("grant", "--grant-type", "device_code", "--client-id", "web-1")
		require.Equal(t, oauthFailureExitCode, exitCode(t, err))
		require.Contains(t, f.out.String(), `"error": "unsupported_grant_type"`)
	})

	t.Run("invalid seed user", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.run("grant", "--grant-type", "password", "--client-id", "web-1", "--user", "alice")
		require.ErrorContains(t, err, "expected name:password")
	})
}

func TestTokenCommandsOnMissingToken(t *testing.T) {
	t.Run("introspect reports inactive", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.run("introspect", "--token", "missing"))
		require.JSONEq(t, `{"active": false}`, f.out.String())
	})

	t.Run("read", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.run("read", "--token", "missing")
		require.Equal(t, oauthFailureExitCode, exitCode(t, err))
		require.Contains(t, f.out.String(), `"error": "token_not_found"`)
	})

	t.Run("revoke", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.run("revoke", "--token", "missing", "--client-id", "web-1")
		require.Equal(t, oauthFailureExitCode, exitCode(t, err))
		require.Contains(t, f.out.String(), `"error": "token_not_found"`)
	})
}

func TestUnknownStore(t *testing.T) {
	f := setupTestFixture(t)
	f.store = "cassandra"
	err := f.run("introspect", "--token", "x")
	require.ErrorContains(t, err, "unknown store")
}

func TestJWKSCommand(t *testing.T) {
	f := setupTestFixture(t)
	err := f.run("jwks")
	require.ErrorContains(t, err, "has no public keys")

	t.Setenv("JWT_SIGNER_TYPE", "ES256")
	f = &testFixture{store: storeMemory}
	require.NoError(t, f.run("jwks"))

	var jwks struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
		} `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EC", jwks.Keys[0].Kty)
	require.Equal(t, signerKeyID, jwks.Keys[0].Kid)
}
