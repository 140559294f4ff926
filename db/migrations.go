// Package db ships the Postgres schema migrations.
package db

import "embed"

// Migrations holds the *.up.sql files applied by store.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsGlob selects the forward migrations inside Migrations.
const MigrationsGlob = "migrations/*_*.up.sql"
