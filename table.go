package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/TechXTT/sqlsrv/internal/core"
	"github.com/TechXTT/sqlsrv/internal/dialect"
)

// Pair is one column = value condition.
type Pair = core.Pair

// KeyValues is an ordered list of equality conditions; the order is kept in
// the generated WHERE clause.
type KeyValues = core.KeyValues

// Order is an ORDER BY direction.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// normalize validates o; the zero value means Desc.
func (o Order) normalize() (Order, error) {
	switch Order(strings.ToUpper(string(o))) {
	case "":
		return Desc, nil
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, string(o))
	}
}

// FieldList joins field names with " , ", leaving a trailing space.
func FieldList(fields []string) string { return core.FieldList(fields) }

// Predicate renders kv as "k = v AND ... " with values written verbatim.
// Use it for diagnostics only: nothing this package executes is built with it.
func Predicate(kv KeyValues) string { return core.Predicate(kv) }

// BoundPredicate renders kv with the bind markers of driver, numbered from
// start, and returns the values to bind.
func BoundPredicate(driver string, kv KeyValues, start int) (string, []any, error) {
	d, ok := dialect.Get(driver)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	clause, args := core.BoundPredicate(d.Placeholder, kv, start)
	return clause, args, nil
}

// Get returns every row of table ordered by id. With no fields every column
// is selected.
func (s *Session) Get(ctx context.Context, table string, fields []string, mode FetchMode, order Order) ([]Row, error) {
	order, err := order.normalize()
	if err != nil {
		return nil, err
	}
	sb := core.NewSelect(table).Fields(fields...).OrderBy("id " + string(order))
	return s.selectRows(ctx, sb, mode)
}

// GetByID returns the row of table whose id equals id. It fails with
// ErrNotFound when no row matches and ErrAmbiguousID when several do.
func (s *Session) GetByID(ctx context.Context, table string, id any) (Row, error) {
	if err := s.ready(); err != nil {
		return Row{}, err
	}
	sb := core.NewSelect(table).Where("id = "+s.dialect.Placeholder(1), id)
	rows, err := s.selectRows(ctx, sb, FetchAssoc)
	if err != nil {
		return Row{}, err
	}
	switch len(rows) {
	case 0:
		return Row{}, fmt.Errorf("%s id %v: %w", table, id, ErrNotFound)
	case 1:
		return rows[0], nil
	default:
		return Row{}, fmt.Errorf("%s id %v: %w (%d rows)", table, id, ErrAmbiguousID, len(rows))
	}
}

// GetWhere returns the rows of table matching every pair in kv, ordered by
// id. Values are bound as parameters.
func (s *Session) GetWhere(ctx context.Context, table string, kv KeyValues, order Order) ([]Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(kv) == 0 {
		return nil, ErrEmptyPredicate
	}
	for _, p := range kv {
		if err := core.ValidateIdent(p.Key); err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
	}
	order, err := order.normalize()
	if err != nil {
		return nil, err
	}
	clause, args := core.BoundPredicate(s.dialect.Placeholder, kv, 1)
	sb := core.NewSelect(table).Where(clause, args...).OrderBy("id " + string(order))
	return s.selectRows(ctx, sb, FetchAssoc)
}

func (s *Session) selectRows(ctx context.Context, sb *core.SelectBuilder, mode FetchMode) ([]Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := sb.Validate(); err != nil {
		return nil, err
	}
	query, args := sb.Build()
	st, err := s.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return s.ExecuteFetch(ctx, st, mode, args...)
}
