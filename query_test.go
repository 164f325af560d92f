package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	db "github.com/TechXTT/sqlsrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRaw_FetchAll(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "TechXT").
			AddRow(int64(2), "Ada"))

	st, err := s.ExecuteRaw(ctx, "SELECT id, name FROM users")
	require.NoError(t, err)
	assert.True(t, st.Executed())

	rows, err := s.FetchAll(ctx, st, db.FetchAssoc)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	name, ok := rows[1].Value("name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "TechXT"}, rows[0].Map())

	// the cursor is exhausted after a full fetch
	_, err = s.FetchAll(ctx, st, db.FetchAssoc)
	assert.ErrorIs(t, err, db.ErrStatementNotExecuted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestExecuteRaw_Failure ensures a failing literal statement surfaces a typed
// error instead of aborting.
func TestExecuteRaw_Failure(t *testing.T) {
	s, mock := newSession(t)

	driverErr := errors.New("Invalid object name 'nope'")
	mock.ExpectQuery("SELECT * FROM nope").WillReturnError(driverErr)

	st, err := s.ExecuteRaw(context.Background(), "SELECT * FROM nope")
	require.Error(t, err)
	assert.Nil(t, st)

	var rawErr *db.RawSQLError
	require.ErrorAs(t, err, &rawErr)
	assert.Equal(t, "SELECT * FROM nope", rawErr.Query)
	require.Len(t, rawErr.Diagnostics, 1)
	assert.Equal(t, "Invalid object name 'nope'", rawErr.Diagnostics[0].Message)
	assert.ErrorIs(t, err, driverErr)
}

func TestPrepareExecute(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	mock.ExpectPrepare("SELECT name FROM users WHERE id = @p1").
		ExpectQuery().
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Grace"))

	st, err := s.Prepare(ctx, "SELECT name FROM users WHERE id = @p1")
	require.NoError(t, err)
	defer st.Close()

	// not executed yet
	_, err = s.FetchAll(ctx, st, db.FetchAssoc)
	require.ErrorIs(t, err, db.ErrStatementNotExecuted)

	require.NoError(t, s.Execute(ctx, st, 7))
	rows, err := s.FetchAll(ctx, st, db.FetchNumeric)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Grace", rows[0].At(0))
	_, ok := rows[0].Value("name")
	assert.False(t, ok)
	assert.Nil(t, rows[0].Map())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Failure(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	mock.ExpectPrepare("SELECT 1").
		ExpectQuery().
		WillReturnError(errors.New("deadlock victim"))

	st, err := s.Prepare(ctx, "SELECT 1")
	require.NoError(t, err)

	err = s.Execute(ctx, st)
	var stErr *db.StatementError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "execute", stErr.Op)
	assert.False(t, st.Executed())

	assert.Error(t, s.Execute(ctx, nil))
}

func TestPrepare_Failure(t *testing.T) {
	s, mock := newSession(t)

	mock.ExpectPrepare("SELEC 1").WillReturnError(errors.New("syntax error"))

	_, err := s.Prepare(context.Background(), "SELEC 1")
	var stErr *db.StatementError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, "prepare", stErr.Op)
}

func TestRowsAffected(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	assert.Equal(t, int64(-1), s.RowsAffected())

	mock.ExpectExec("UPDATE users SET active = @p1").
		WithArgs(false).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT COUNT(*) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{""}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT * FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Exec(ctx, "UPDATE users SET active = @p1", false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.RowsAffected())

	// scalar fetches leave the count alone
	n, err := s.FetchScalar(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, int64(3), s.RowsAffected())

	st, err := s.ExecuteRaw(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, int64(-1), s.RowsAffected())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchScalar_Empty(t *testing.T) {
	s, mock := newSession(t)

	mock.ExpectQuery("SELECT name FROM users WHERE 1 = 0").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err := s.FetchScalar(context.Background(), "SELECT name FROM users WHERE 1 = 0")
	assert.ErrorIs(t, err, db.ErrNoRows)
}

func TestLastInsertID(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO users (name) VALUES (@p1)").
		WithArgs("Linus").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT SCOPE_IDENTITY() AS SCOPE_IDENTITY").
		WillReturnRows(sqlmock.NewRows([]string{"SCOPE_IDENTITY"}).AddRow([]byte("42")))

	_, err := s.Exec(ctx, "INSERT INTO users (name) VALUES (@p1)", "Linus")
	require.NoError(t, err)

	id, err := s.LastInsertID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastInsertID_Null(t *testing.T) {
	s, mock := newSession(t)

	mock.ExpectQuery("SELECT SCOPE_IDENTITY() AS SCOPE_IDENTITY").
		WillReturnRows(sqlmock.NewRows([]string{"SCOPE_IDENTITY"}).AddRow(nil))

	_, err := s.LastInsertID(context.Background())
	assert.ErrorIs(t, err, db.ErrNoIdentity)
}

func TestFetchObjectsAndArrays(t *testing.T) {
	s, mock := newSession(t)
	ctx := context.Background()

	cols := []string{"id", "title"}
	mock.ExpectQuery("SELECT id, title FROM posts").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "hello"))
	mock.ExpectQuery("SELECT id, title FROM posts").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "hello"))

	objects, err := s.FetchObjects(ctx, "SELECT id, title FROM posts")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, []string{"id", "title"}, objects[0].Columns())

	arrays, err := s.FetchArrays(ctx, "SELECT id, title FROM posts", db.FetchNumeric)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	assert.Nil(t, arrays[0].Columns())
	assert.Equal(t, []any{int64(1), "hello"}, arrays[0].Values())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedSession(t *testing.T) {
	s, _ := newSession(t)
	s.Close()

	_, err := s.ExecuteRaw(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, db.ErrNotConnected)
	_, err = s.FetchScalar(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, db.ErrNotConnected)
	_, err = s.LastInsertID(context.Background())
	assert.ErrorIs(t, err, db.ErrNotConnected)
}
