package migrations

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed *.sql
var files embed.FS

// Names lists the migrations in the order they are applied.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the SQL of one migration.
func Read(name string) (string, error) {
	b, err := files.ReadFile(name)
	if err != nil {
		return "", goerr.Wrap(err, "unknown migration", goerr.V("name", name))
	}
	return string(b), nil
}

// Apply runs every migration in order. The statements are idempotent, so
// applying twice is harmless.
func Apply(ctx context.Context, db *pgxpool.Pool) ([]string, error) {
	names, err := Names()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		sql, err := Read(name)
		if err != nil {
			return nil, err
		}
		if _, err := db.Exec(ctx, sql); err != nil {
			return nil, goerr.Wrap(err, "failed to apply migration", goerr.V("name", name))
		}
	}
	return names, nil
}
