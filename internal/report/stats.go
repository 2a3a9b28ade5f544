package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
)

// TableStats is the structured profile of a table that feeds both the
// narrative prompt and the deterministic fallback report.
type TableStats struct {
	Rows           int                `json:"rows"`
	Columns        int                `json:"columns"`
	ColumnNames    []string           `json:"column_names"`
	ColumnTypes    map[string]string  `json:"column_types"`
	NumericColumns int                `json:"numeric_columns"`
	MissingValues  int                `json:"missing_values"`
	ColumnMeans    map[string]float64 `json:"column_means,omitempty"`
	ColumnStdDevs  map[string]float64 `json:"column_std_devs,omitempty"`
}

// BuildTableStats profiles a table: per-column inferred types, missing
// cell totals, and mean/stddev for numeric columns.
func BuildTableStats(t *dataset.Table, classifier *classify.Classifier) TableStats {
	stats := TableStats{
		Rows:          t.RowCount(),
		Columns:       t.ColumnCount(),
		ColumnNames:   t.ColumnNames(),
		ColumnTypes:   make(map[string]string, t.ColumnCount()),
		MissingValues: t.MissingCount(),
		ColumnMeans:   make(map[string]float64),
		ColumnStdDevs: make(map[string]float64),
	}

	for _, col := range t.Columns() {
		colType := classifier.Classify(col)
		stats.ColumnTypes[col.Name] = string(colType)
		if colType != classify.TypeNumeric {
			continue
		}
		stats.NumericColumns++

		values := col.NumericValues()
		if len(values) == 0 {
			continue
		}
		stats.ColumnMeans[col.Name] = stat.Mean(values, nil)
		if len(values) > 1 {
			stats.ColumnStdDevs[col.Name] = stat.StdDev(values, nil)
		}
	}

	return stats
}
