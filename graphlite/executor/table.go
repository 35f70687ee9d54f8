package executor

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Table renders a ResultSet as a markdown table, for a REPL or debug
// output. A mutation summary (no Variables) renders as its affected-row
// count instead.
func (rs *ResultSet) Table() string {
	if rs == nil || len(rs.Variables) == 0 {
		if rs != nil && rs.RowsAffected > 0 {
			return fmt.Sprintf("_%d rows affected_", rs.RowsAffected)
		}
		return "_Empty result_"
	}
	if len(rs.Rows) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", rs.Variables)
	}

	var sb strings.Builder
	alignment := make([]tw.Align, len(rs.Variables))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(&sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(rs.Variables)
	for _, row := range rs.Rows {
		cells := make([]string, len(rs.Variables))
		for i, col := range rs.Variables {
			cells[i] = row[col].String()
		}
		table.Append(cells)
	}
	table.Render()
	sb.WriteString(fmt.Sprintf("\n_%d rows_\n", len(rs.Rows)))
	return sb.String()
}
