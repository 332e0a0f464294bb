package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SchemaTables are the tables the service needs at runtime.
var SchemaTables = []string{"users", "orders", "counters"}

// HasTable reports whether table exists in the connected database.
func HasTable(ctx context.Context, q DBTX, table string) (bool, error) {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return name.Valid && name.String != "", nil
}

// MissingTables returns the subset of tables that do not exist yet.
func MissingTables(ctx context.Context, q DBTX, tables ...string) ([]string, error) {
	missing := []string{}
	for _, t := range tables {
		ok, err := HasTable(ctx, q, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, t)
		}
	}
	return missing, nil
}
