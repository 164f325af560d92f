// File: internal/core/builder.go
package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/TechXTT/sqlsrv/internal/typeconv"
)

// ErrInvalidIdentifier is returned when a table, column or key name is not a
// plain (optionally schema-qualified or bracket-quoted) identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identRe = regexp.MustCompile(`^(\[[^\]]+\]|[A-Za-z_][A-Za-z0-9_]*)(\.(\[[^\]]+\]|[A-Za-z_][A-Za-z0-9_]*))*$`)

// ValidateIdent checks that name can be spliced into SQL text as an identifier.
func ValidateIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// Pair is one column = value condition.
type Pair struct {
	Key   string
	Value any
}

// KeyValues is an ordered set of equality conditions.
type KeyValues []Pair

// FieldList joins column names with " , " and leaves a trailing space after
// the last one: ["a","b"] -> "a , b ".
func FieldList(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		b.WriteString(f)
		if i == len(fields)-1 {
			b.WriteString(" ")
		} else {
			b.WriteString(" , ")
		}
	}
	return b.String()
}

// Predicate renders kv as "k1 = v1 AND k2 = v2 " with the values written
// verbatim. The output is not safe to execute with untrusted values; use
// BoundPredicate for anything sent to the database.
func Predicate(kv KeyValues) string {
	return joinPredicate(kv, func(_ int, p Pair) string { return typeconv.Literal(p.Value) })
}

// BoundPredicate renders kv like Predicate but with bind markers produced by
// placeholder, numbered from start, and returns the values as arguments.
func BoundPredicate(placeholder func(int) string, kv KeyValues, start int) (string, []any) {
	args := make([]any, 0, len(kv))
	clause := joinPredicate(kv, func(i int, p Pair) string {
		args = append(args, p.Value)
		return placeholder(start + i)
	})
	return clause, args
}

func joinPredicate(kv KeyValues, value func(int, Pair) string) string {
	var b strings.Builder
	for i, p := range kv {
		b.WriteString(p.Key)
		b.WriteString(" = ")
		b.WriteString(value(i, p))
		if i == len(kv)-1 {
			b.WriteString(" ")
		} else {
			b.WriteString(" AND ")
		}
	}
	return b.String()
}

// SelectBuilder assembles the single-table SELECT statements used by the
// session helpers.
type SelectBuilder struct {
	table   string
	fields  []string
	where   string
	args    []interface{}
	orderBy string
}

func NewSelect(table string) *SelectBuilder {
	return &SelectBuilder{table: table}
}

// Fields sets the selected columns; none means "*".
func (sb *SelectBuilder) Fields(cols ...string) *SelectBuilder {
	sb.fields = cols
	return sb
}

// Where sets the WHERE clause and its bound arguments.
func (sb *SelectBuilder) Where(cond string, vals ...interface{}) *SelectBuilder {
	sb.where = cond
	sb.args = append(sb.args, vals...)
	return sb
}

// OrderBy sets the ORDER BY clause
func (sb *SelectBuilder) OrderBy(order string) *SelectBuilder {
	sb.orderBy = order
	return sb
}

// Validate checks every identifier the builder will splice into the query.
func (sb *SelectBuilder) Validate() error {
	if err := ValidateIdent(sb.table); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	for _, f := range sb.fields {
		if err := ValidateIdent(f); err != nil {
			return fmt.Errorf("field: %w", err)
		}
	}
	return nil
}

// Build assembles the SQL query string and returns it with args
func (sb *SelectBuilder) Build() (string, []interface{}) {
	fields := "*"
	if len(sb.fields) > 0 {
		fields = FieldList(sb.fields)
	}
	query := "SELECT " + fields + " FROM " + sb.table
	if sb.where != "" {
		query += " WHERE " + sb.where
	}
	if sb.orderBy != "" {
		query += " ORDER BY " + sb.orderBy
	}
	return query, sb.args
}
