// Package migrations holds the postgres schema as golang-migrate SQL files.
// The files are embedded so the server and the migrate CLI need no
// migrations directory at runtime.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
