package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	db "github.com/TechXTT/sqlsrv"
)

// NewGetCmd builds the `get` command.
func NewGetCmd(o *options) *cobra.Command {
	var (
		fields  []string
		order   string
		numeric bool
	)
	cmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Print every row of a table ordered by id",
		Args:  cobra.ExactArgs(1),
		RunE: o.withSession(func(cmd *cobra.Command, s *db.Session, args []string) error {
			mode := db.FetchAssoc
			if numeric {
				mode = db.FetchNumeric
			}
			rows, err := s.Get(cmd.Context(), args[0], fields, mode, db.Order(order))
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), rows)
			return nil
		}),
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to select (default all)")
	cmd.Flags().StringVar(&order, "order", string(db.Desc), "ASC or DESC")
	cmd.Flags().BoolVar(&numeric, "numeric", false, "Print positional rows without column names")
	return cmd
}

// NewGetByIDCmd builds the `get-by-id` command.
func NewGetByIDCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get-by-id <table> <id>",
		Short: "Print the row with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: o.withSession(func(cmd *cobra.Command, s *db.Session, args []string) error {
			row, err := s.GetByID(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), []db.Row{row})
			return nil
		}),
	}
}

// NewWhereCmd builds the `where` command.
func NewWhereCmd(o *options) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "where <table> <key=value>...",
		Short: "Print the rows matching every key=value pair",
		Args:  cobra.MinimumNArgs(2),
		RunE: o.withSession(func(cmd *cobra.Command, s *db.Session, args []string) error {
			kv, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			rows, err := s.GetWhere(cmd.Context(), args[0], kv, db.Order(order))
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), rows)
			return nil
		}),
	}
	cmd.Flags().StringVar(&order, "order", string(db.Desc), "ASC or DESC")
	return cmd
}

// parsePairs turns "k=v" arguments into conditions, keeping their order.
func parsePairs(args []string) (db.KeyValues, error) {
	kv := make(db.KeyValues, 0, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		kv = append(kv, db.Pair{Key: strings.TrimSpace(k), Value: v})
	}
	return kv, nil
}
