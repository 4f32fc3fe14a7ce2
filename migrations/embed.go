// Package migrations embeds the SQL schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
