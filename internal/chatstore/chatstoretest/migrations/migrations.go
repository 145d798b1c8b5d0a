// Package migrations embeds the ChatStorage.sqlite schema used by fixtures.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
