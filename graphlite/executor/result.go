// Package executor implements GraphLite's executor (§4.6): given a physical
// plan, a GraphCache and an optional transaction context, it produces either
// a ResultSet or a mutation summary.
package executor

import "github.com/mwatts/graphlite"

// Row is one bound tuple: variable/column name to its current value.
type Row map[string]graphlite.Value

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ResultSet is the executor's query-mode output (§6): ordered column names
// plus the rows projected in that order, and a rows_affected counter that
// mutation statements populate (zero for pure reads).
type ResultSet struct {
	Variables    []string
	Rows         []Row
	RowsAffected int
}
