package model

// RosterTable is an uploaded census file held in memory: the original header
// in file order plus every row. Derived columns are added during
// reconciliation; original columns are never removed.
type RosterTable struct {
	Columns []string
	Rows    []*RosterRow
}

// RosterRow is one visit to reconcile. Values are kept by column name so all
// original columns survive to the output file unchanged.
type RosterRow struct {
	Number int // 1-based data row number in the source file
	Fields map[string]string
}

// Get returns the value of the named column, or "" if absent.
func (r *RosterRow) Get(col string) string {
	return r.Fields[col]
}

// Set assigns a value to the named column. The column must already exist in
// the table header (see RosterTable.EnsureColumns).
func (r *RosterRow) Set(col, v string) {
	r.Fields[col] = v
}

// HasColumn reports whether the table header contains the named column.
func (t *RosterTable) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// EnsureColumns appends any missing columns to the table header. Rows are not
// touched; absent values read back as "".
func (t *RosterTable) EnsureColumns(cols ...string) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
}

// Filter returns a new table containing only rows for which keep returns
// true. The header is shared with the receiver.
func (t *RosterTable) Filter(keep func(*RosterRow) bool) *RosterTable {
	out := &RosterTable{Columns: t.Columns}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
