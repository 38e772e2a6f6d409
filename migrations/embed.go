// Package migrations embeds the SQL schema for every supported database.
package migrations

import "embed"

const (
	PostgresDir = "postgresql"
	MySQLDir    = "mysql"
)

//go:embed postgresql/*.sql mysql/*.sql
var FS embed.FS
