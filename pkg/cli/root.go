package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/sqlsrv"
	"github.com/TechXTT/sqlsrv/pkg/config"
	"github.com/TechXTT/sqlsrv/pkg/telemetry"
)

func version() string {
	return "v0.1.0"
}

func help() string {
	return `sqlsrv runs ad-hoc statements against a database through a single session.
Connection settings come from SQLSRV_SERVER, SQLSRV_DATABASE, SQLSRV_USER,
SQLSRV_PASSWORD, SQLSRV_CHARSET and SQLSRV_DRIVER, optionally read from a .env file.
Examples:
  sqlsrv status
  sqlsrv query "SELECT TOP 10 * FROM users"
  sqlsrv exec "UPDATE users SET active = 0 WHERE id = 7"
  sqlsrv get users --fields id,name --order ASC
  sqlsrv get-by-id users 7
  sqlsrv where users role=admin active=1`
}

type options struct {
	envFile string
	verbose bool
	trace   bool
}

// openSession loads configuration and connects. A failed connection is
// returned as an error; the caller never sees a half-open session.
func (o *options) openSession(ctx context.Context, stderr io.Writer) (*db.Session, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	var opts []db.Option
	if o.verbose {
		opts = append(opts, db.WithLogger(log.New(stderr, "[sqlsrv] ", log.LstdFlags)))
	}
	if o.trace {
		opts = append(opts, db.WithTracing())
	}
	s, err := db.Open(ctx, cfg, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// withSession wraps a command body with session setup and teardown.
func (o *options) withSession(fn func(cmd *cobra.Command, s *db.Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if o.trace {
			shutdown, _, err := telemetry.Setup(ctx, "sqlsrv")
			if err != nil {
				return fmt.Errorf("telemetry: %w", err)
			}
			defer shutdown(context.Background())
		}
		s, err := o.openSession(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version())
		},
	}
}

// NewStatusCmd builds the `status` command. It reports the connection
// outcome rather than failing on it.
func NewStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the configured database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.envFile)
			if err != nil {
				return err
			}
			s, err := db.Open(cmd.Context(), cfg)
			defer s.Close()
			if !s.Status() {
				cmd.Printf("%s %s: not connected: %v\n", cfg.Driver, cfg.Server, err)
				return nil
			}
			cmd.Printf("%s %s: connected\n", cfg.Driver, cfg.Server)
			return nil
		},
	}
}

// NewRootCmd builds the top-level `sqlsrv` command.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "sqlsrv",
		Short:         "sqlsrv: single-session database helper",
		Long:          help(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.envFile, "env", ".env", "Environment file with SQLSRV_* settings")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Log every statement to stderr")
	root.PersistentFlags().BoolVar(&o.trace, "trace", false, "Export OpenTelemetry spans to SQLSRV_OTEL_ENDPOINT")

	root.AddCommand(NewStatusCmd(o))
	root.AddCommand(NewQueryCmd(o))
	root.AddCommand(NewExecCmd(o))
	root.AddCommand(NewGetCmd(o))
	root.AddCommand(NewGetByIDCmd(o))
	root.AddCommand(NewWhereCmd(o))
	root.AddCommand(NewVersionCmd())
	return root
}
