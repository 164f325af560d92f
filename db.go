package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TechXTT/sqlsrv/internal/core"
	"github.com/TechXTT/sqlsrv/internal/dialect"
	"github.com/TechXTT/sqlsrv/internal/plugin"
	"github.com/TechXTT/sqlsrv/pkg/config"
	"github.com/TechXTT/sqlsrv/pkg/runtime"
)

// Hooks are run around every statement a Session sends.
type Hooks = plugin.Hooks

// Logger is satisfied by *log.Logger.
type Logger = plugin.Logger

// Session owns a single database connection for its lifetime and exposes
// query helpers on top of it. A Session is not safe for concurrent use.
type Session struct {
	cfg     config.Config
	handle  *sql.DB
	conn    *sql.Conn
	dialect dialect.Dialect
	hooks   plugin.Chain
	status  bool

	// statements handed out and not yet closed; their cursors must be
	// released before the connection can be.
	open map[*Statement]struct{}

	rowsAffected int64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger logs every statement and its outcome to l.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, plugin.LogHooks{Logger: l})
	}
}

// WithTracing records an OpenTelemetry span per statement using the global
// tracer provider.
func WithTracing() Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, plugin.TraceHooks{System: dbSystem(s.dialect)})
	}
}

// WithHooks adds custom statement hooks.
func WithHooks(h ...Hooks) Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, h...)
	}
}

// Open connects with the supplied configuration. It always returns a
// Session; Status reports whether the connection was established and the
// error explains why it was not.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	handle, driver, err := runtime.Connect(ctx, cfg)
	if err != nil {
		s := &Session{cfg: cfg, handle: handle, rowsAffected: -1}
		return s, fmt.Errorf("connect: %w", err)
	}
	s, err := New(ctx, handle, driver, opts...)
	s.cfg = cfg
	return s, err
}

// New builds a Session on an existing handle, taking one dedicated
// connection from it. The Session takes ownership of handle.
func New(ctx context.Context, handle *sql.DB, driver string, opts ...Option) (*Session, error) {
	s := &Session{handle: handle, rowsAffected: -1}
	d, ok := dialect.Get(driver)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	s.dialect = d
	for _, opt := range opts {
		opt(s)
	}

	conn, err := handle.Conn(ctx)
	if err != nil {
		return s, fmt.Errorf("acquire connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return s, fmt.Errorf("ping: %w", err)
	}
	s.conn = conn
	s.status = true
	return s, nil
}

// Status reports whether the Session connected. It is decided once, at
// construction.
func (s *Session) Status() bool { return s.status }

// Config returns the configuration the Session was opened with.
func (s *Session) Config() config.Config { return s.cfg }

// Close releases the connection and the underlying handle. Closing twice,
// or closing a Session that never connected, is a no-op.
func (s *Session) Close() error {
	var errs []error
	for st := range s.open {
		errs = append(errs, st.Close())
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	if s.handle != nil {
		errs = append(errs, core.Close(s.handle))
		s.handle = nil
	}
	return errors.Join(errs...)
}

// track registers st so Close can release it.
func (s *Session) track(st *Statement) *Statement {
	if s.open == nil {
		s.open = make(map[*Statement]struct{})
	}
	s.open[st] = struct{}{}
	st.release = func() { delete(s.open, st) }
	return st
}

func (s *Session) ready() error {
	if s.conn == nil {
		return ErrNotConnected
	}
	return nil
}

// query runs a row-returning statement on the session connection.
func (s *Session) query(ctx context.Context, op, query string, args []any) (*sql.Rows, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ctx = s.hooks.BeforeQuery(ctx, op, query, args)
	rows, err := s.conn.QueryContext(ctx, query, args...)
	s.hooks.AfterQuery(ctx, op, query, err)
	return rows, err
}

func dbSystem(d dialect.Dialect) string {
	if d == nil {
		return "other_sql"
	}
	switch d.Name() {
	case "sqlserver":
		return "mssql"
	case "postgres":
		return "postgresql"
	default:
		return d.Name()
	}
}
