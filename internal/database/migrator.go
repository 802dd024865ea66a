package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// The schema ships inside the binary so `projects migrate` works from any
// directory.
//
//go:embed migrations/*.sql
var migrations embed.FS

// SchemaVersionTable records which schema files have been applied.
const SchemaVersionTable = "schema_version"

// Migrate brings the database schema up to date.
//
// It opens a single connection through the provider, loads the embedded SQL
// files into a tern migrator and applies whatever is missing. Running it on
// an up-to-date database is a no-op.
func Migrate(ctx context.Context, logger *zerolog.Logger, provider Connector) error {
	conn, err := provider.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, SchemaVersionTable)
	if err != nil {
		return fmt.Errorf("constructing schema migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving embedded schema: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading embedded schema: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current schema version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	to := int32(len(m.Migrations))
	if from == to {
		logger.Info().Int32("version", to).Msg("database schema up to date")
	} else {
		logger.Info().Int32("from", from).Int32("to", to).Msg("applied database schema")
	}
	return nil
}
