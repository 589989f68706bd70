package main

import (
	"os"

	"minilibrary/internal/config"
)

type settings struct {
	dsn string
	dir string
}

// loadSettings reads .env files without overriding the runtime environment
// (e.g. Docker) and resolves the database and migrations location.
func loadSettings() settings {
	config.LoadEnvFiles()
	return settings{dsn: config.LoadDatabaseDSN(), dir: migrationsDir()}
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
