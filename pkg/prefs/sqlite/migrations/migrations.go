// Package migrations embeds the SQL schema for the preferences store.
package migrations

import "embed"

// FS holds the ordered *.sql files applied by sqlite.Open.
//
//go:embed *.sql
var FS embed.FS
