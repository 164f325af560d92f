package cli

import (
	"github.com/spf13/cobra"

	db "github.com/TechXTT/sqlsrv"
)

// NewQueryCmd builds the `query` command.
func NewQueryCmd(o *options) *cobra.Command {
	var numeric bool
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a statement and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *db.Session, args []string) error {
			mode := db.FetchAssoc
			if numeric {
				mode = db.FetchNumeric
			}
			rows, err := s.FetchArrays(cmd.Context(), args[0], mode)
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), rows)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&numeric, "numeric", false, "Print positional rows without column names")
	return cmd
}

// NewExecCmd builds the `exec` command.
func NewExecCmd(o *options) *cobra.Command {
	var lastID bool
	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a statement that returns no rows",
		Args:  cobra.ExactArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *db.Session, args []string) error {
			if _, err := s.Exec(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("rows affected: %d\n", s.RowsAffected())
			if lastID {
				id, err := s.LastInsertID(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("last insert id: %d\n", id)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&lastID, "last-id", false, "Print the identity generated by the statement")
	return cmd
}
