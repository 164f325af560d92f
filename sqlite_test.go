package db_test

import (
	"context"
	"testing"
	"time"

	db "github.com/TechXTT/sqlsrv"
	"github.com/TechXTT/sqlsrv/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteSession runs the whole API against an in-memory database.
func TestSQLiteSession(t *testing.T) {
	ctx := context.Background()
	s, err := db.Open(ctx, config.Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.True(t, s.Status())
	defer s.Close()

	_, err = s.Exec(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, role TEXT)`)
	require.NoError(t, err)

	for _, u := range [][2]string{{"ada", "admin"}, {"grace", "user"}, {"linus", "admin"}} {
		_, err := s.Exec(ctx, `INSERT INTO users (name, role) VALUES (?, ?)`, u[0], u[1])
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.RowsAffected())
	}

	id, err := s.LastInsertID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	rows, err := s.Get(ctx, "users", []string{"id", "name"}, db.FetchAssoc, db.Desc)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	name, _ := rows[0].Value("name")
	assert.Equal(t, "linus", name)

	row, err := s.GetByID(ctx, "users", 2)
	require.NoError(t, err)
	name, _ = row.Value("name")
	assert.Equal(t, "grace", name)

	admins, err := s.GetWhere(ctx, "users", db.KeyValues{{Key: "role", Value: "admin"}}, db.Asc)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, int64(1), admins[0].At(0))

	count, err := s.FetchScalar(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = s.Exec(ctx, `UPDATE users SET role = ? WHERE role = ?`, "staff", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.RowsAffected())

	_, err = s.ExecuteRaw(ctx, "SELECT * FROM missing")
	var rawErr *db.RawSQLError
	assert.ErrorAs(t, err, &rawErr)
}

// TestClose_ReleasesOpenStatements ensures Close does not wait on cursors the
// caller never drained.
func TestClose_ReleasesOpenStatements(t *testing.T) {
	ctx := context.Background()
	s, err := db.Open(ctx, config.Config{Driver: "sqlite"})
	require.NoError(t, err)

	_, err = s.Exec(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	_, err = s.Exec(ctx, `INSERT INTO t (v) VALUES ('a'), ('b')`)
	require.NoError(t, err)

	raw, err := s.ExecuteRaw(ctx, "SELECT * FROM t")
	require.NoError(t, err)
	prepared, err := s.Prepare(ctx, "SELECT v FROM t WHERE id > ?")
	require.NoError(t, err)
	require.NoError(t, s.Execute(ctx, prepared, 0))

	done := make(chan error, 1)
	go func() { done <- s.Close() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Close blocked on undrained statements")
	}
	assert.False(t, raw.Executed())
	assert.False(t, prepared.Executed())
	require.NoError(t, raw.Close())
}

// TestOpen_DriverAliases accepts the alternate spellings of a driver name.
func TestOpen_DriverAliases(t *testing.T) {
	for _, driver := range []string{"sqlite3", "SQLITE"} {
		s, err := db.Open(context.Background(), config.Config{Driver: driver})
		require.NoError(t, err, driver)
		assert.True(t, s.Status())
		require.NoError(t, s.Close())
	}
}
