// File: internal/dialect/dialect.go
package dialect

import (
	"strconv"
	"sync"
)

// Dialect captures the few places where drivers disagree on SQL text.
type Dialect interface {
	// Name returns the driver name the dialect is registered under.
	Name() string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
	// LastIdentityQuery returns a scalar query yielding the identity generated
	// by the last insert on the current connection.
	LastIdentityQuery() string
}

var (
	mu       sync.RWMutex
	dialects = map[string]Dialect{}
)

// Register registers a dialect for a driver.
func Register(driverName string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[driverName] = d
}

// Get returns the dialect for a driver.
func Get(driverName string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[driverName]
	return d, ok
}

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

func (sqlServerDialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// SCOPE_IDENTITY() only sees inserts from the same batch scope. go-mssqldb
// sends parameterized statements through sp_executesql, a scope of its own,
// so after a parameterized insert this reads NULL; @@IDENTITY is session wide
// but also picks up identities generated by triggers.
func (sqlServerDialect) LastIdentityQuery() string {
	return "SELECT SCOPE_IDENTITY() AS SCOPE_IDENTITY"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) LastIdentityQuery() string { return "SELECT lastval()" }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) LastIdentityQuery() string { return "SELECT LAST_INSERT_ID()" }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) LastIdentityQuery() string { return "SELECT last_insert_rowid()" }

func init() {
	Register("sqlserver", sqlServerDialect{})
	Register("mssql", sqlServerDialect{})
	Register("postgres", postgresDialect{})
	Register("postgresql", postgresDialect{})
	Register("mysql", mysqlDialect{})
	Register("sqlite", sqliteDialect{})
}
