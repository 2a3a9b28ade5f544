package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the table back to CSV: header row first, then rows in
// order. Missing cells render as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := t.RowCount()
	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < rows; i++ {
		for j, col := range cols {
			record[j] = col.Cells[i].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
