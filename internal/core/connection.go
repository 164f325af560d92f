// File: internal/core/connection.go
package core

import (
	"context"
	"database/sql"
	"fmt"
)

// Connect opens a handle and verifies it with a ping. The handle is returned
// even when the ping fails so the caller can close it.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return db, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
