package sqlrepo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/jrsteele09/go-oauth2-core/token/sqlrepo"
	"github.com/stretchr/testify/require"
)

const (
	testAccessID  = "a1"
	testRefreshID = "r1"
	testClientID  = "client-1"
	testUsername  = "alice"
)

var (
	testNow     = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	accessCols  = []string{"id", "client_id", "username", "scopes", "grant_type", "issued_at", "expiration", "additional_info", "id", "expiration"}
	refreshCols = []string{"id", "expiration", "access_token_id"}
)

type testFixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	access  *sqlrepo.AccessTokenRepo
	refresh *sqlrepo.RefreshTokenRepo
}

func setupTestFixture(t *testing.T, driver string) *testFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	access, refresh, err := sqlrepo.New(db, driver)
	require.NoError(t, err)
	return &testFixture{db: db, mock: mock, access: access, refresh: refresh}
}

func (f *testFixture) expectAccessRow(withRefresh bool) {
	rows := sqlmock.NewRows(accessCols)
	if withRefresh {
		rows.AddRow(testAccessID, testClientID, testUsername, "read write", "password", testNow, testNow.Add(10*time.Minute), `{"jwt":"x.y.z"}`, testRefreshID, testNow.Add(2*time.Hour))
	} else {
		rows.AddRow(testAccessID, testClientID, testUsername, "read write", "password", testNow, testNow.Add(10*time.Minute), "{}", nil, nil)
	}
	f.mock.ExpectQuery("SELECT (.+) FROM access_tokens a LEFT JOIN refresh_tokens r").WithArgs(testAccessID).WillReturnRows(rows)
}

func newToken(t *testing.T) *token.AuthorizedAccessToken {
	t.Helper()
	at, err := token.NewAccessToken(token.IDGeneratorFunc(func() (string, error) { return testAccessID, nil }), token.AccessTokenOptions{
		Client:         testClientID,
		Username:       testUsername,
		Scopes:         oauth2.NewScopeSet("read", "write"),
		GrantType:      oauth2.PasswordGrant,
		IssuedAt:       testNow,
		Expiration:     testNow.Add(10 * time.Minute),
		AdditionalInfo: map[string]string{"jwt": "x.y.z"},
	})
	require.NoError(t, err)
	require.NoError(t, at.GenerateRefreshToken(token.IDGeneratorFunc(func() (string, error) { return testRefreshID, nil }), testNow.Add(2*time.Hour)))
	return at
}

func TestNewUnsupportedDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, _, err = sqlrepo.New(db, "sqlite")
	require.Error(t, err)
}

func TestSave(t *testing.T) {
	f := setupTestFixture(t, "postgres")
	f.mock.ExpectBegin()
	f.mock.ExpectExec("INSERT INTO access_tokens").
		WithArgs(testAccessID, testClientID, testUsername, "read write", "password", sqlmock.AnyArg(), sqlmock.AnyArg(), `{"jwt":"x.y.z"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(testRefreshID, testAccessID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	require.NoError(t, f.access.Save(context.Background(), newToken(t)))
}

func TestFindByID(t *testing.T) {
	t.Run("with refresh token", func(t *testing.T) {
		f := setupTestFixture(t, "postgres")
		f.expectAccessRow(true)

		at, err := f.access.FindByID(context.Background(), testAccessID)
		require.NoError(t, err)
		require.Equal(t, oauth2.ClientID(testClientID), at.Client)
		require.Equal(t, oauth2.NewScopeSet("read", "write"), at.Scopes)
		require.Equal(t, "x.y.z", at.AdditionalInfo["jwt"])
		require.Equal(t, oauth2.TokenID(testRefreshID), at.RefreshToken.ID)
		require.Same(t, at, at.RefreshToken.AccessToken)
	})

	t.Run("without refresh token", func(t *testing.T) {
		f := setupTestFixture(t, "mysql")
		f.expectAccessRow(false)

		at, err := f.access.FindByID(context.Background(), testAccessID)
		require.NoError(t, err)
		require.Nil(t, at.RefreshToken)
		require.Nil(t, at.AdditionalInfo)
	})

	t.Run("not found", func(t *testing.T) {
		f := setupTestFixture(t, "postgres")
		f.mock.ExpectQuery("SELECT (.+) FROM access_tokens").WillReturnRows(sqlmock.NewRows(accessCols))

		_, err := f.access.FindByID(context.Background(), "missing")
		require.ErrorIs(t, err, ierrors.ErrNotFound)
	})
}

func TestFindByClientAndUser(t *testing.T) {
	f := setupTestFixture(t, "postgres")
	f.mock.ExpectQuery("WHERE a.client_id = (.+) AND a.username = (.+) ORDER BY a.issued_at DESC LIMIT 1").
		WithArgs(testClientID, testUsername).
		WillReturnRows(sqlmock.NewRows(accessCols))

	_, err := f.access.FindByClientAndUser(context.Background(), testClientID, testUsername)
	require.ErrorIs(t, err, ierrors.ErrNotFound)
}

func TestDelete(t *testing.T) {
	for _, tt := range []struct {
		name     string
		affected int64
	}{
		{"removed", 1},
		{"already gone", 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, "postgres")
			f.mock.ExpectBegin()
			f.mock.ExpectExec("DELETE FROM refresh_tokens WHERE access_token_id").WithArgs(testAccessID).WillReturnResult(sqlmock.NewResult(0, tt.affected))
			f.mock.ExpectExec("DELETE FROM access_tokens WHERE id").WithArgs(testAccessID).WillReturnResult(sqlmock.NewResult(0, tt.affected))
			f.mock.ExpectCommit()

			deleted, err := f.access.Delete(context.Background(), testAccessID)
			require.NoError(t, err)
			require.Equal(t, tt.affected == 1, deleted)
		})
	}
}

func TestConsumePostgres(t *testing.T) {
	t.Run("consumed", func(t *testing.T) {
		f := setupTestFixture(t, "postgres")
		f.mock.ExpectBegin()
		f.mock.ExpectQuery("DELETE FROM refresh_tokens WHERE id = (.+) RETURNING").
			WithArgs(testRefreshID).
			WillReturnRows(sqlmock.NewRows(refreshCols).AddRow(testRefreshID, testNow.Add(2*time.Hour), testAccessID))
		f.mock.ExpectCommit()
		f.expectAccessRow(false)

		rt, err := f.refresh.Consume(context.Background(), testRefreshID)
		require.NoError(t, err)
		require.Equal(t, oauth2.TokenID(testRefreshID), rt.ID)
		require.Equal(t, oauth2.TokenID(testAccessID), rt.AccessToken.ID)
		require.Same(t, rt, rt.AccessToken.RefreshToken)
	})

	t.Run("already consumed", func(t *testing.T) {
		f := setupTestFixture(t, "postgres")
		f.mock.ExpectBegin()
		f.mock.ExpectQuery("DELETE FROM refresh_tokens WHERE id = (.+) RETURNING").WillReturnRows(sqlmock.NewRows(refreshCols))
		f.mock.ExpectRollback()

		_, err := f.refresh.Consume(context.Background(), testRefreshID)
		require.ErrorIs(t, err, ierrors.ErrNotFound)
	})
}

func TestConsumeMySQL(t *testing.T) {
	t.Run("consumed", func(t *testing.T) {
		f := setupTestFixture(t, "mysql")
		f.mock.ExpectBegin()
		f.mock.ExpectQuery("SELECT id, expiration, access_token_id FROM refresh_tokens WHERE id = \\? FOR UPDATE").
			WithArgs(testRefreshID).
			WillReturnRows(sqlmock.NewRows(refreshCols).AddRow(testRefreshID, testNow.Add(2*time.Hour), testAccessID))
		f.mock.ExpectExec("DELETE FROM refresh_tokens WHERE id = \\?").WithArgs(testRefreshID).WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()
		f.expectAccessRow(false)

		rt, err := f.refresh.Consume(context.Background(), testRefreshID)
		require.NoError(t, err)
		require.Equal(t, oauth2.Username(testUsername), rt.AccessToken.Username)
	})

	t.Run("lost the race", func(t *testing.T) {
		f := setupTestFixture(t, "mysql")
		f.mock.ExpectBegin()
		f.mock.ExpectQuery("FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(refreshCols).AddRow(testRefreshID, testNow.Add(2*time.Hour), testAccessID))
		f.mock.ExpectExec("DELETE FROM refresh_tokens WHERE id").WillReturnResult(sqlmock.NewResult(0, 0))
		f.mock.ExpectRollback()

		_, err := f.refresh.Consume(context.Background(), testRefreshID)
		require.ErrorIs(t, err, ierrors.ErrNotFound)
	})
}

func TestRefreshFindByID(t *testing.T) {
	f := setupTestFixture(t, "postgres")
	f.mock.ExpectQuery("SELECT id, expiration, access_token_id FROM refresh_tokens WHERE id").
		WithArgs(testRefreshID).
		WillReturnRows(sqlmock.NewRows(refreshCols).AddRow(testRefreshID, testNow.Add(2*time.Hour), testAccessID))
	f.expectAccessRow(true)

	rt, err := f.refresh.FindByID(context.Background(), testRefreshID)
	require.NoError(t, err)
	require.True(t, rt.Expiration.Equal(testNow.Add(2*time.Hour)))
	require.False(t, rt.IsExpired(testNow))
}
