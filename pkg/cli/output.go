package cli

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	db "github.com/TechXTT/sqlsrv"
	"github.com/TechXTT/sqlsrv/internal/typeconv"
)

// renderRows writes rows as a text table. Positional rows get numbered
// headers.
func renderRows(w io.Writer, rows []db.Row) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	if len(rows) > 0 {
		header := rows[0].Columns()
		if header == nil {
			header = make([]string, rows[0].Len())
			for i := range header {
				header[i] = strconv.Itoa(i)
			}
		}
		table.SetHeader(header)
	}
	for _, r := range rows {
		cells := make([]string, r.Len())
		for i, v := range r.Values() {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = typeconv.Literal(v)
		}
		table.Append(cells)
	}
	table.Render()
}
