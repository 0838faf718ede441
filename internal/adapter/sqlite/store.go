// Package sqlite owns the collection database: it opens the SQLite file with
// the pragmas the collection relies on and applies schema migrations. The
// note repository lives in the nested note package.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, registers as "sqlite"
)

// Open opens (creating if needed) the collection database at path and
// configures the connection for single-writer use.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %q: %w", path, err)
	}

	// The collection forbids concurrent writers; a single connection also
	// keeps staged batch writes serialized.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping collection: %w", err)
	}

	return db, nil
}
