// Package migrations embeds the database schema migrations so the server
// binary can apply them at startup without shipping loose SQL files.
package migrations

import "embed"

// FS holds the embedded goose migration files.
//
//go:embed *.sql
var FS embed.FS
