// Package sqlrepo stores access and refresh tokens in PostgreSQL or MySQL.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-oauth2-core/internal/database"
	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/jrsteele09/go-oauth2-core/token"
	"github.com/pkg/errors"
)

var (
	_ token.AccessTokenRepo  = (*AccessTokenRepo)(nil)
	_ token.RefreshTokenRepo = (*RefreshTokenRepo)(nil)
)

type AccessTokenRepo struct {
	db *sql.DB
	tx database.TxManager
	q  queries
}

type RefreshTokenRepo struct {
	db     *sql.DB
	tx     database.TxManager
	q      queries
	driver string
	access *AccessTokenRepo
}

// New returns the token repos for driver ("postgres" or "mysql").
func New(db *sql.DB, driver string) (*AccessTokenRepo, *RefreshTokenRepo, error) {
	var q queries
	switch driver {
	case database.DriverPostgres:
		q = postgresQueries
	case database.DriverMySQL:
		q = mysqlQueries
	default:
		return nil, nil, errors.Errorf("[sqlrepo.New] unsupported driver %q", driver)
	}

	tm := database.NewTxManager(db)
	access := &AccessTokenRepo{db: db, tx: tm, q: q}
	return access, &RefreshTokenRepo{db: db, tx: tm, q: q, driver: driver, access: access}, nil
}

func (r *AccessTokenRepo) FindByID(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedAccessToken, error) {
	row := database.GetTx(ctx, r.db).QueryRowContext(ctx, r.q.findAccessByID, string(id))
	t, err := scanAccessToken(row)
	if err != nil {
		return nil, errors.Wrapf(err, "[AccessTokenRepo.FindByID] %s", id)
	}
	return t, nil
}

func (r *AccessTokenRepo) FindByClientAndUser(ctx context.Context, client oauth2.ClientID, username oauth2.Username) (*token.AuthorizedAccessToken, error) {
	row := database.GetTx(ctx, r.db).QueryRowContext(ctx, r.q.findAccessByClientUser, string(client), string(username))
	t, err := scanAccessToken(row)
	if err != nil {
		return nil, errors.Wrapf(err, "[AccessTokenRepo.FindByClientAndUser] %s:%s", client, username)
	}
	return t, nil
}

func (r *AccessTokenRepo) Save(ctx context.Context, t *token.AuthorizedAccessToken) error {
	info, err := encodeAdditionalInfo(t.AdditionalInfo)
	if err != nil {
		return errors.Wrap(err, "[AccessTokenRepo.Save] encode additional info")
	}

	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := database.GetTx(ctx, r.db)
		if _, err := q.ExecContext(ctx, r.q.insertAccess,
			string(t.ID), string(t.Client), string(t.Username), t.Scopes.String(), string(t.GrantType),
			t.IssuedAt.UTC(), t.Expiration.UTC(), info,
		); err != nil {
			return errors.Wrapf(err, "[AccessTokenRepo.Save] insert access token %s", t.ID)
		}

		if t.RefreshToken == nil {
			return nil
		}
		if _, err := q.ExecContext(ctx, r.q.insertRefresh,
			string(t.RefreshToken.ID), string(t.ID), t.RefreshToken.Expiration.UTC(),
		); err != nil {
			return errors.Wrapf(err, "[AccessTokenRepo.Save] insert refresh token for %s", t.ID)
		}
		return nil
	})
}

func (r *AccessTokenRepo) Delete(ctx context.Context, id oauth2.TokenID) (bool, error) {
	var deleted bool
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := database.GetTx(ctx, r.db)
		if _, err := q.ExecContext(ctx, r.q.deleteRefreshByAccess, string(id)); err != nil {
			return errors.Wrapf(err, "[AccessTokenRepo.Delete] delete refresh tokens of %s", id)
		}

		res, err := q.ExecContext(ctx, r.q.deleteAccess, string(id))
		if err != nil {
			return errors.Wrapf(err, "[AccessTokenRepo.Delete] delete access token %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "[AccessTokenRepo.Delete] rows affected")
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func (r *RefreshTokenRepo) FindByID(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedRefreshToken, error) {
	row := database.GetTx(ctx, r.db).QueryRowContext(ctx, r.q.findRefreshByID, string(id))
	rt, accessID, err := scanRefreshToken(row)
	if err != nil {
		return nil, errors.Wrapf(err, "[RefreshTokenRepo.FindByID] %s", id)
	}
	return r.link(ctx, rt, accessID)
}

// Consume deletes the refresh token and returns it linked to its access
// token. Postgres does this in one DELETE ... RETURNING; MySQL locks the
// row first.
func (r *RefreshTokenRepo) Consume(ctx context.Context, id oauth2.TokenID) (*token.AuthorizedRefreshToken, error) {
	var (
		rt       *token.AuthorizedRefreshToken
		accessID oauth2.TokenID
	)

	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		q := database.GetTx(ctx, r.db)

		if r.driver == database.DriverPostgres {
			var err error
			rt, accessID, err = scanRefreshToken(q.QueryRowContext(ctx, r.q.consumeRefresh, string(id)))
			return err
		}

		var err error
		rt, accessID, err = scanRefreshToken(q.QueryRowContext(ctx, r.q.lockRefresh, string(id)))
		if err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, r.q.deleteRefresh, string(id))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ierrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[RefreshTokenRepo.Consume] %s", id)
	}
	return r.link(ctx, rt, accessID)
}

func (r *RefreshTokenRepo) link(ctx context.Context, rt *token.AuthorizedRefreshToken, accessID oauth2.TokenID) (*token.AuthorizedRefreshToken, error) {
	at, err := r.access.FindByID(ctx, accessID)
	if err != nil {
		return nil, err
	}
	at.RefreshToken = rt
	rt.AccessToken = at
	return rt, nil
}

func scanAccessToken(row *sql.Row) (*token.AuthorizedAccessToken, error) {
	var (
		t          token.AuthorizedAccessToken
		id, client string
		username   string
		scopes, gt string
		info       string
		refreshID  sql.NullString
		refreshExp sql.NullTime
	)

	if err := row.Scan(&id, &client, &username, &scopes, &gt, &t.IssuedAt, &t.Expiration, &info, &refreshID, &refreshExp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrNotFound
		}
		return nil, err
	}

	t.ID = oauth2.TokenID(id)
	t.Client = oauth2.ClientID(client)
	t.Username = oauth2.Username(username)
	t.Scopes = oauth2.ParseScope(scopes)
	t.GrantType = oauth2.GrantType(gt)

	additional, err := decodeAdditionalInfo(info)
	if err != nil {
		return nil, err
	}
	t.AdditionalInfo = additional

	if refreshID.Valid {
		t.RefreshToken = &token.AuthorizedRefreshToken{
			ID:          oauth2.TokenID(refreshID.String),
			Expiration:  refreshExp.Time,
			AccessToken: &t,
		}
	}
	return &t, nil
}

func scanRefreshToken(row *sql.Row) (*token.AuthorizedRefreshToken, oauth2.TokenID, error) {
	var (
		id, accessID string
		exp          time.Time
	)
	if err := row.Scan(&id, &exp, &accessID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ierrors.ErrNotFound
		}
		return nil, "", err
	}
	return &token.AuthorizedRefreshToken{ID: oauth2.TokenID(id), Expiration: exp}, oauth2.TokenID(accessID), nil
}

func encodeAdditionalInfo(info map[string]string) (string, error) {
	if len(info) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(info)
	return string(b), err
}

func decodeAdditionalInfo(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, errors.Wrap(err, "decode additional info")
	}
	return info, nil
}
