package buttons

import (
	"embed"
	"io/fs"
)

// migrationsFS holds the telemetry schema for postgres and, under
// data/sql/migrations/sqlite, for sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

func GetMigrationsFS() fs.FS {
	return migrationsFS
}
