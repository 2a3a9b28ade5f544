package dataset

import "strings"

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// NonMissing returns the column's non-missing cells in order.
func (c *Column) NonMissing() []Cell {
	out := make([]Cell, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.IsMissing() {
			out = append(out, cell)
		}
	}
	return out
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	count := 0
	for _, cell := range c.Cells {
		if cell.IsMissing() {
			count++
		}
	}
	return count
}

// NumericValues returns the values of all non-missing cells that carry a
// numeric value, in column order.
func (c *Column) NumericValues() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if v, ok := cell.NumericValue(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Table is an ordered sequence of named columns aligned by row index.
// All columns have equal length for the lifetime of the table; row order
// is insertion order from the source and is semantically meaningful.
type Table struct {
	columns []*Column
}

// NewTable creates an empty table with the given column names.
func NewTable(names []string) *Table {
	columns := make([]*Column, len(names))
	for i, name := range names {
		columns[i] = &Column{Name: name}
	}
	return &Table{columns: columns}
}

// AppendRow appends one cell per column. The row must have exactly one
// cell per column.
func (t *Table) AppendRow(cells []Cell) {
	for i, col := range t.columns {
		col.Cells = append(col.Cells, cells[i])
	}
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns the table's columns in order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column returns the column at index i.
func (t *Table) Column(i int) *Column {
	return t.columns[i]
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// MissingCount returns the total number of missing cells in the table.
func (t *Table) MissingCount() int {
	total := 0
	for _, col := range t.columns {
		total += col.MissingCount()
	}
	return total
}

// Clone returns a deep copy of the table. Each pipeline invocation works
// on its own clone so no state leaks between invocations.
func (t *Table) Clone() *Table {
	columns := make([]*Column, len(t.columns))
	for i, col := range t.columns {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		columns[i] = &Column{Name: col.Name, Cells: cells}
	}
	return &Table{columns: columns}
}

// RowSignature returns the row's duplicate-detection signature over the
// current cell values. Missing equals missing.
func (t *Table) RowSignature(row int) string {
	parts := make([]string, len(t.columns))
	for i, col := range t.columns {
		parts[i] = col.Cells[row].signature()
	}
	return strings.Join(parts, "\x1f")
}

// KeepRows retains only the rows whose index is marked true, preserving
// order.
func (t *Table) KeepRows(keep []bool) {
	for _, col := range t.columns {
		kept := col.Cells[:0]
		for i, cell := range col.Cells {
			if keep[i] {
				kept = append(kept, cell)
			}
		}
		col.Cells = kept
	}
}
