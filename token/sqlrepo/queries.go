package sqlrepo

// queries holds the statements of one SQL dialect.
type queries struct {
	findAccessByID         string
	findAccessByClientUser string
	insertAccess           string
	insertRefresh          string
	deleteRefreshByAccess  string
	deleteAccess           string
	findRefreshByID        string
	consumeRefresh         string // postgres only
	lockRefresh            string // mysql only
	deleteRefresh          string
}

const selectAccessColumns = `SELECT a.id, a.client_id, a.username, a.scopes, a.grant_type, a.issued_at,
	a.expiration, a.additional_info, r.id, r.expiration
	FROM access_tokens a LEFT JOIN refresh_tokens r ON r.access_token_id = a.id`

var postgresQueries = queries{
	findAccessByID:         selectAccessColumns + ` WHERE a.id = $1`,
	findAccessByClientUser: selectAccessColumns + ` WHERE a.client_id = $1 AND a.username = $2 ORDER BY a.issued_at DESC LIMIT 1`,
	insertAccess: `INSERT INTO access_tokens (id, client_id, username, scopes, grant_type, issued_at, expiration, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	insertRefresh:         `INSERT INTO refresh_tokens (id, access_token_id, expiration) VALUES ($1, $2, $3)`,
	deleteRefreshByAccess: `DELETE FROM refresh_tokens WHERE access_token_id = $1`,
	deleteAccess:          `DELETE FROM access_tokens WHERE id = $1`,
	findRefreshByID:       `SELECT id, expiration, access_token_id FROM refresh_tokens WHERE id = $1`,
	consumeRefresh:        `DELETE FROM refresh_tokens WHERE id = $1 RETURNING id, expiration, access_token_id`,
	deleteRefresh:         `DELETE FROM refresh_tokens WHERE id = $1`,
}

var mysqlQueries = queries{
	findAccessByID:         selectAccessColumns + ` WHERE a.id = ?`,
	findAccessByClientUser: selectAccessColumns + ` WHERE a.client_id = ? AND a.username = ? ORDER BY a.issued_at DESC LIMIT 1`,
	insertAccess: `INSERT INTO access_tokens (id, client_id, username, scopes, grant_type, issued_at, expiration, additional_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	insertRefresh:         `INSERT INTO refresh_tokens (id, access_token_id, expiration) VALUES (?, ?, ?)`,
	deleteRefreshByAccess: `DELETE FROM refresh_tokens WHERE access_token_id = ?`,
	deleteAccess:          `DELETE FROM access_tokens WHERE id = ?`,
	findRefreshByID:       `SELECT id, expiration, access_token_id FROM refresh_tokens WHERE id = ?`,
	lockRefresh:           `SELECT id, expiration, access_token_id FROM refresh_tokens WHERE id = ? FOR UPDATE`,
	deleteRefresh:         `DELETE FROM refresh_tokens WHERE id = ?`,
}
