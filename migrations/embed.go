// Package migrations ships the Postgres schema for registry records, listings, purchases
// and the audit trail. Files are applied in name order by database.Migrate.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
