package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TechXTT/sqlsrv/internal/typeconv"
)

// Statement is a prepared or executed query. It is owned by the caller from
// Prepare/ExecuteRaw until it has been fetched to completion or closed.
type Statement struct {
	query string
	stmt  *sql.Stmt
	rows  *sql.Rows

	release func()
}

// Query returns the SQL text of the statement.
func (st *Statement) Query() string { return st.query }

// Executed reports whether the statement has an open cursor to fetch from.
func (st *Statement) Executed() bool { return st != nil && st.rows != nil }

// Close releases the cursor and the prepared statement. It is safe to call
// more than once.
func (st *Statement) Close() error {
	if st == nil {
		return nil
	}
	var errs []error
	if st.rows != nil {
		errs = append(errs, st.rows.Close())
		st.rows = nil
	}
	if st.stmt != nil {
		errs = append(errs, st.stmt.Close())
		st.stmt = nil
	}
	st.untrack()
	return errors.Join(errs...)
}

func (st *Statement) untrack() {
	if st.release != nil {
		st.release()
		st.release = nil
	}
}

// drain reads every remaining row and closes the cursor.
func (st *Statement) drain(ctx context.Context, mode FetchMode) ([]Row, error) {
	if !st.Executed() {
		return nil, ErrStatementNotExecuted
	}
	rows := st.rows
	defer func() {
		rows.Close()
		st.rows = nil
		// a raw statement has nothing left once its cursor is gone
		if st.stmt == nil {
			st.untrack()
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	width := len(columns)
	if mode == FetchNumeric {
		columns = nil
	}

	results := []Row{}
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := scanValues(rows, width)
		if err != nil {
			return nil, err
		}
		results = append(results, Row{columns: columns, values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

func scanValues(rows *sql.Rows, width int) ([]any, error) {
	values := make([]any, width)
	ptrs := make([]any, width)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	for i, v := range values {
		values[i] = typeconv.Normalize(v)
	}
	return values, nil
}
