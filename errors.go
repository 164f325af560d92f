package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
)

var (
	// ErrNotConnected is returned by every query method of a session that
	// failed to connect or has been closed.
	ErrNotConnected = errors.New("session is not connected")
	// ErrStatementNotExecuted is returned when fetching from a statement
	// with no open cursor.
	ErrStatementNotExecuted = errors.New("statement has not been executed")
	ErrNoRows               = sql.ErrNoRows
	ErrNotFound             = errors.New("record not found")
	ErrAmbiguousID          = errors.New("more than one record matches id")
	ErrNoIdentity           = errors.New("no identity value generated on this connection")
	ErrInvalidOrder         = errors.New("order must be ASC or DESC")
	ErrEmptyPredicate       = errors.New("at least one key/value pair is required")
	ErrUnknownDriver        = errors.New("unknown driver")
)

// Diagnostic is one driver-reported error record.
type Diagnostic struct {
	SQLState string
	Code     int
	Message  string
}

func (d Diagnostic) String() string {
	if d.SQLState == "" && d.Code == 0 {
		return d.Message
	}
	return fmt.Sprintf("[%s] %d: %s", d.SQLState, d.Code, d.Message)
}

// RawSQLError reports a failed literal SQL statement together with whatever
// diagnostics the driver attached to the failure.
type RawSQLError struct {
	Query       string
	Diagnostics []Diagnostic
	Err         error
}

func (e *RawSQLError) Error() string {
	msg := e.Err.Error()
	if len(e.Diagnostics) > 0 {
		msg = e.Diagnostics[0].String()
	}
	return fmt.Sprintf("raw sql %q: %s", e.Query, msg)
}

func (e *RawSQLError) Unwrap() error { return e.Err }

// StatementError reports a failed prepare or execute.
type StatementError struct {
	Op    string
	Query string
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Query, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

func rawError(query string, err error) error {
	return &RawSQLError{Query: query, Diagnostics: diagnostics(err), Err: err}
}

// diagnostics extracts structured error records from the drivers this
// package registers. Unknown errors yield a single message-only record.
func diagnostics(err error) []Diagnostic {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		all := msErr.All
		if len(all) == 0 {
			all = []mssql.Error{msErr}
		}
		out := make([]Diagnostic, 0, len(all))
		for _, e := range all {
			out = append(out, Diagnostic{
				SQLState: fmt.Sprintf("%02d", e.State),
				Code:     int(e.Number),
				Message:  e.Message,
			})
		}
		return out
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return []Diagnostic{{SQLState: string(pqErr.Code), Message: pqErr.Message}}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return []Diagnostic{{
			SQLState: string(myErr.SQLState[:]),
			Code:     int(myErr.Number),
			Message:  myErr.Message,
		}}
	}
	return []Diagnostic{{Message: err.Error()}}
}
