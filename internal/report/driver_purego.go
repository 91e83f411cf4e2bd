//go:build !cgo_sqlite

// Pure Go SQLite driver, used by default so the tool builds with
// CGO_ENABLED=0.
package report

import (
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"
