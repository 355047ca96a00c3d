package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/flexprice/checkout/internal/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded SQL file
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded schema files in apply order
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read embedded migrations").
			Mark(ierr.ErrSystem)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Failed to read migration %s", name).
				Mark(ierr.ErrSystem)
		}
		migrations = append(migrations, Migration{Name: name, SQL: string(body)})
	}
	return migrations, nil
}

// Migrate applies every embedded migration inside a single transaction.
// The statements are idempotent so re-running is safe.
func (db *DB) Migrate(ctx context.Context) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range migrations {
			db.logger.Infow("applying migration", "name", m.Name)
			if _, err := db.GetQuerier(ctx).ExecContext(ctx, m.SQL); err != nil {
				return ierr.WithError(err).
					WithHintf("Migration %s failed", m.Name).
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}
