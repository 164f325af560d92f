package db

// FetchMode selects the shape of fetched rows.
type FetchMode int

const (
	// FetchAssoc keeps column names so values can be looked up by name.
	FetchAssoc FetchMode = iota
	// FetchNumeric yields positional rows only.
	FetchNumeric
)

func (m FetchMode) String() string {
	switch m {
	case FetchAssoc:
		return "assoc"
	case FetchNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Row is one fetched record. Values are in select-list order.
type Row struct {
	columns []string
	values  []any
}

// Len returns the number of values in the row.
func (r Row) Len() int { return len(r.values) }

// At returns the value at position i, or nil when i is out of range.
func (r Row) At(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// Value returns the value of the named column. Rows fetched with
// FetchNumeric carry no names and always report false. When a column name
// repeats, the rightmost one wins.
func (r Row) Value(column string) (any, bool) {
	for i := len(r.columns) - 1; i >= 0; i-- {
		if r.columns[i] == column {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r Row) Columns() []string { return r.columns }

func (r Row) Values() []any { return r.values }

// Map returns the row keyed by column name; nil for positional rows.
func (r Row) Map() map[string]any {
	if r.columns == nil {
		return nil
	}
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}
