package db

import "embed"

// MigrationFS embeds SQL migration files from internal/infra/db/migrations.
// The migrate runner (cmd/migrate) applies them with golang-migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
