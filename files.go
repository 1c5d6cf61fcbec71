package auth

import "embed"

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS exposes the embedded schema migrations so callers can
// feed them to the persistence client at boot.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
