package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds the connection parameters of one session. It is passed by
// value and never mutated after Load.
type Config struct {
	Server   string `env:"SQLSRV_SERVER" envDefault:"localhost"`
	Database string `env:"SQLSRV_DATABASE"`
	User     string `env:"SQLSRV_USER"`
	Password string `env:"SQLSRV_PASSWORD"`
	Charset  string `env:"SQLSRV_CHARSET" envDefault:"UTF-8"`
	Driver   string `env:"SQLSRV_DRIVER" envDefault:"sqlserver"`
}

// Load reads an optional .env file and then the SQLSRV_* environment.
// A missing envFile is not an error; variables already set win over it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// CanonicalDriver maps a configured driver to the name it is registered
// under with database/sql. An empty name means sqlserver.
func CanonicalDriver(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlserver", "mssql", "":
		return "sqlserver", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// DSN renders the data source name understood by the configured driver.
func (c Config) DSN() (string, error) {
	driver, err := CanonicalDriver(c.Driver)
	if err != nil {
		return "", err
	}
	switch driver {
	case "sqlserver":
		q := url.Values{}
		if c.Database != "" {
			q.Set("database", c.Database)
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Server,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case "postgres":
		q := url.Values{}
		if enc := postgresEncoding(c.Charset); enc != "" {
			q.Set("client_encoding", enc)
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Server,
			Path:     "/" + c.Database,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.Server
		mc.DBName = c.Database
		if cs := mysqlCharset(c.Charset); cs != "" {
			mc.Params = map[string]string{"charset": cs}
		}
		return mc.FormatDSN(), nil
	case "sqlite":
		if c.Database == "" {
			return ":memory:", nil
		}
		return c.Database, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

func postgresEncoding(charset string) string {
	switch strings.ToUpper(strings.ReplaceAll(charset, "-", "")) {
	case "":
		return ""
	case "UTF8":
		return "UTF8"
	default:
		return charset
	}
}

func mysqlCharset(charset string) string {
	switch strings.ToUpper(strings.ReplaceAll(charset, "-", "")) {
	case "":
		return ""
	case "UTF8":
		return "utf8mb4"
	default:
		return strings.ToLower(charset)
	}
}
