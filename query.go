package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TechXTT/sqlsrv/internal/typeconv"
)

// ExecuteRaw runs a literal SQL string and returns its open cursor. Any
// args are bound, not interpolated. A failure is reported as *RawSQLError.
//
// ExecuteRaw resets RowsAffected to -1: a cursor cannot report a count, so
// INSERT, UPDATE and DELETE belong on Exec. The returned Statement holds the
// session connection until it is drained or closed; Close releases it too.
func (s *Session) ExecuteRaw(ctx context.Context, query string, args ...any) (*Statement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.rowsAffected = -1
	rows, err := s.query(ctx, "query", query, args)
	if err != nil {
		return nil, rawError(query, err)
	}
	return s.track(&Statement{query: query, rows: rows}), nil
}

// Exec runs a statement that returns no rows and records its affected-row
// count for RowsAffected.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.rowsAffected = -1
	ctx = s.hooks.BeforeQuery(ctx, "exec", query, args)
	res, err := s.conn.ExecContext(ctx, query, args...)
	s.hooks.AfterQuery(ctx, "exec", query, err)
	if err != nil {
		return nil, rawError(query, err)
	}
	if n, err := res.RowsAffected(); err == nil && n >= 0 {
		s.rowsAffected = n
	}
	return res, nil
}

// Prepare compiles query without executing it.
func (s *Session) Prepare(ctx context.Context, query string) (*Statement, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, &StatementError{Op: "prepare", Query: query, Err: err}
	}
	return s.track(&Statement{query: query, stmt: stmt}), nil
}

// Execute runs a prepared statement with args bound to its placeholders,
// leaving the cursor open on st for FetchAll. Executing again discards any
// unread rows from the previous run.
func (s *Session) Execute(ctx context.Context, st *Statement, args ...any) error {
	if err := s.ready(); err != nil {
		return err
	}
	if st == nil || st.stmt == nil {
		return &StatementError{Op: "execute", Err: fmt.Errorf("statement is not prepared")}
	}
	if st.rows != nil {
		st.rows.Close()
		st.rows = nil
	}
	ctx = s.hooks.BeforeQuery(ctx, "execute", st.query, args)
	rows, err := st.stmt.QueryContext(ctx, args...)
	s.hooks.AfterQuery(ctx, "execute", st.query, err)
	if err != nil {
		return &StatementError{Op: "execute", Query: st.query, Err: err}
	}
	st.rows = rows
	return nil
}

// FetchAll drains the cursor of an executed statement into memory, in the
// order the driver returns rows. The cursor is closed afterwards; fetching
// again requires another Execute.
func (s *Session) FetchAll(ctx context.Context, st *Statement, mode FetchMode) ([]Row, error) {
	if st == nil {
		return nil, ErrStatementNotExecuted
	}
	return st.drain(ctx, mode)
}

// ExecuteFetch executes a prepared statement and drains it.
func (s *Session) ExecuteFetch(ctx context.Context, st *Statement, mode FetchMode, args ...any) ([]Row, error) {
	if err := s.Execute(ctx, st, args...); err != nil {
		return nil, err
	}
	return s.FetchAll(ctx, st, mode)
}

// FetchObjects runs query and returns every row as a named record.
func (s *Session) FetchObjects(ctx context.Context, query string, args ...any) ([]Row, error) {
	return s.FetchArrays(ctx, query, FetchAssoc, args...)
}

// FetchArrays runs query and returns every row in the requested shape.
func (s *Session) FetchArrays(ctx context.Context, query string, mode FetchMode, args ...any) ([]Row, error) {
	st, err := s.ExecuteRaw(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return s.FetchAll(ctx, st, mode)
}

// FetchScalar runs query and returns the first column of the first row.
// It does not change RowsAffected.
func (s *Session) FetchScalar(ctx context.Context, query string, args ...any) (any, error) {
	rows, err := s.query(ctx, "scalar", query, args)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			return nil, err
		}
		return nil, rawError(query, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating rows: %w", err)
		}
		return nil, ErrNoRows
	}
	values, err := scanValues(rows, len(columns))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoRows
	}
	return values[0], nil
}

// RowsAffected returns the count reported for the last statement run with
// Exec, or -1 when no statement has run yet or the last one was a query.
func (s *Session) RowsAffected() int64 { return s.rowsAffected }

// LastInsertID returns the identity generated by the last insert on this
// session's connection. A NULL identity is ErrNoIdentity rather than 0.
// On SQL Server, SCOPE_IDENTITY() is NULL after a parameterized Exec, which
// go-mssqldb runs in its own sp_executesql scope; insert with literal SQL or
// use an OUTPUT clause there.
func (s *Session) LastInsertID(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	v, err := s.FetchScalar(ctx, s.dialect.LastIdentityQuery())
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if v == nil {
		return 0, ErrNoIdentity
	}
	id, err := typeconv.ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
