package authcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth2-core/authcode"
	fakecoderepo "github.com/jrsteele09/go-oauth2-core/authcode/fakerepo"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/oauthmodel"
	"github.com/stretchr/testify/require"
)

const (
	testClientID      = oauth2.ClientID("client-1")
	testUsername      = oauth2.Username("alice")
	testRedirectURI   = "http://localhost:3000/callback"
	testState         = "random-state-value"
	testCodeChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	testCodeVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testRequest() oauth2.AuthorizationRequest {
	return oauth2.AuthorizationRequest{
		ClientID:     testClientID,
		Username:     testUsername,
		State:        testState,
		RedirectURI:  testRedirectURI,
		Scopes:       oauth2.NewScopeSet("read"),
		ResponseType: oauth2.CodeResponseType,
	}
}

func TestNew(t *testing.T) {
	ac := authcode.New(testRequest(), testNow, 0)
	require.Equal(t, testNow.Add(authcode.DefaultExpiry), ac.Expiration)
	require.False(t, ac.IsExpired(testNow))
	require.True(t, ac.IsExpired(ac.Expiration))

	req := testRequest()
	req.CodeChallenge = testCodeVerifier
	require.Equal(t, oauth2.CodeMethodTypeNone, authcode.New(req, testNow, time.Minute).CodeChallengeMethod)
}

func TestValidateWithAuthorizationRequest(t *testing.T) {
	ac := authcode.New(testRequest(), testNow, 0)

	tests := []struct {
		name   string
		mutate func(r *oauth2.AuthorizationRequest)
		want   error
	}{
		{"matching", func(*oauth2.AuthorizationRequest) {}, nil},
		{"no state sent", func(r *oauth2.AuthorizationRequest) { r.State = "" }, nil},
		{"other client", func(r *oauth2.AuthorizationRequest) { r.ClientID = "client-2" }, oauthmodel.ErrInvalidGrant},
		{"other redirect", func(r *oauth2.AuthorizationRequest) { r.RedirectURI = "http://evil" }, oauthmodel.ErrInvalidGrant},
		{"missing redirect", func(r *oauth2.AuthorizationRequest) { r.RedirectURI = "" }, oauthmodel.ErrInvalidGrant},
		{"other state", func(r *oauth2.AuthorizationRequest) { r.State = "x" }, oauthmodel.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			err := ac.ValidateWithAuthorizationRequest(req)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyCodeVerifier(t *testing.T) {
	withChallenge := func(challenge string, method oauth2.CodeMethodType) *authcode.AuthorizationCode {
		req := testRequest()
		req.CodeChallenge = challenge
		req.CodeChallengeMethod = method
		return authcode.New(req, testNow, 0)
	}

	require.NoError(t, authcode.New(testRequest(), testNow, 0).VerifyCodeVerifier(""))
	require.NoError(t, withChallenge(testCodeChallenge, oauth2.CodeMethodTypeS256).VerifyCodeVerifier(testCodeVerifier))
	require.NoError(t, withChallenge(testCodeVerifier, oauth2.CodeMethodTypeNone).VerifyCodeVerifier(testCodeVerifier))

	require.ErrorIs(t, withChallenge(testCodeChallenge, oauth2.CodeMethodTypeS256).VerifyCodeVerifier("wrong"), oauthmodel.ErrInvalidGrant)
	require.ErrorIs(t, withChallenge(testCodeChallenge, oauth2.CodeMethodTypeS256).VerifyCodeVerifier(""), oauthmodel.ErrInvalidGrant)
	require.ErrorIs(t, withChallenge(testCodeChallenge, "S512").VerifyCodeVerifier(testCodeVerifier), oauthmodel.ErrInvalidGrant)
}

type testConfig struct{}

func (testConfig) GetAuthCodeTimeout() time.Duration { return time.Minute }
func (testConfig) GetCodeGenerationLength() int      { return 16 }

func TestConsumer(t *testing.T) {
	ctx := context.Background()
	repo := fakecoderepo.NewFakeCodeRepo()

	var gotLength int
	consumer := authcode.NewConsumer(repo,
		authcode.WithConfig(testConfig{}),
		authcode.WithNowTime(func() time.Time { return testNow }),
		authcode.WithGenerator(func(length int) (string, error) {
			gotLength = length
			return "code-1", nil
		}),
	)

	issued, err := consumer.Issue(ctx, testRequest())
	require.NoError(t, err)
	require.Equal(t, 16, gotLength)
	require.Equal(t, oauth2.AuthorizationCode("code-1"), issued.Code)
	require.Equal(t, testNow.Add(time.Minute), issued.Expiration)
	require.Equal(t, 1, repo.Len())

	consumed, err := consumer.Consume(ctx, "code-1")
	require.NoError(t, err)
	require.Equal(t, issued, consumed)

	again, err := consumer.Consume(ctx, "code-1")
	require.NoError(t, err)
	require.Nil(t, again)
}

func TestRandomCode(t *testing.T) {
	a, err := authcode.RandomCode(32)
	require.NoError(t, err)
	b, err := authcode.RandomCode(32)
	require.NoError(t, err)
	require.Len(t, a, 43)
	require.NotEqual(t, a, b)
}
