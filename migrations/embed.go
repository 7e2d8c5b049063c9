// Package migrations embeds the portal's SQL schema migrations so the server
// and the migrate CLI run the same files without a checkout on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
