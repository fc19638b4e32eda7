// Package migrations embeds the SQL migrations for the local stores.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
