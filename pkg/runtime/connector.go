package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/TechXTT/sqlsrv/internal/core"
	"github.com/TechXTT/sqlsrv/pkg/config"
)

// DriverName maps a configured driver to the name it is registered under
// with database/sql.
func DriverName(driver string) (string, error) {
	return config.CanonicalDriver(driver)
}

// NormalizeDSN applies driver defaults the config layer does not know about.
func NormalizeDSN(driver, dsn string) (string, error) {
	// If the DSN is empty, throw an error.
	if dsn == "" {
		return "", fmt.Errorf("DSN is empty")
	}
	// Ensure SSL mode is disabled by default if not specified.
	if driver == "postgres" && strings.HasPrefix(dsn, "postgres://") && !strings.Contains(dsn, "sslmode=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = dsn + sep + "sslmode=disable"
	}
	return dsn, nil
}

// Connect opens and pings a database handle for cfg. It returns the
// database/sql driver name alongside the handle. On a failed ping the handle
// is still returned so it can be closed.
func Connect(ctx context.Context, cfg config.Config) (*sql.DB, string, error) {
	driver, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	cfg.Driver = driver
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, driver, err
	}
	dsn, err = NormalizeDSN(driver, dsn)
	if err != nil {
		return nil, driver, err
	}
	db, err := core.Connect(ctx, driver, dsn)
	return db, driver, err
}
