package cleaning

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/errors"
)

// imputeMissing fills missing cells with a type-dependent statistic:
// median for numeric columns, mode for categorical columns (ties broken
// by first occurrence), forward-fill then back-fill for date columns.
// String and unknown columns are left untouched; a column whose
// statistic is undefined is a silent no-op, never an error.
func (p *Pipeline) imputeMissing(ctx context.Context, t *dataset.Table, summary *Summary) ([]Step, error) {
	outcomes, err := p.forEachColumn(ctx, t, func(i int, col *dataset.Column) (int, error) {
		if col.MissingCount() == 0 {
			return 0, nil
		}

		var filled int
		var fillErr error
		switch p.classifier.Classify(col) {
		case classify.TypeNumeric:
			filled, fillErr = imputeMedian(col)
		case classify.TypeCategorical:
			filled, fillErr = imputeMode(col)
		case classify.TypeDate:
			filled = imputeFill(col)
		default:
			// string/unknown: imputing free text is not attempted
		}
		if stderrors.Is(fillErr, errors.ErrStatisticUndefined) {
			// undefined median/mode is a no-op, not a column failure
			return 0, nil
		}
		return filled, fillErr
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, outcome := range outcomes {
		total += outcome.count
	}
	summary.MissingValuesHandled += total

	steps := p.skippedSteps("handle_missing", t, outcomes)
	steps = append(steps, Step{
		Name:        "handle_missing",
		Description: fmt.Sprintf("Handled %d missing values", total),
		Count:       total,
	})
	return steps, nil
}

// imputeMedian fills missing cells with the median of the column's
// numeric values.
func imputeMedian(col *dataset.Column) (int, error) {
	med, ok := median(col.NumericValues())
	if !ok {
		return 0, errors.ErrStatisticUndefined
	}
	filled := 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			col.Cells[i] = dataset.Number(med)
			filled++
		}
	}
	return filled, nil
}

// imputeMode fills missing cells with the most frequent value.
func imputeMode(col *dataset.Column) (int, error) {
	mode, ok := modeCell(col.Cells)
	if !ok {
		return 0, errors.ErrStatisticUndefined
	}
	filled := 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			col.Cells[i] = mode
			filled++
		}
	}
	return filled, nil
}

// imputeFill forward-fills from the nearest preceding value, then
// back-fills anything still missing at the start of the column.
func imputeFill(col *dataset.Column) int {
	filled := 0

	last := dataset.Missing()
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			if !last.IsMissing() {
				col.Cells[i] = last
				filled++
			}
			continue
		}
		last = cell
	}

	next := dataset.Missing()
	for i := len(col.Cells) - 1; i >= 0; i-- {
		cell := col.Cells[i]
		if cell.IsMissing() {
			if !next.IsMissing() {
				col.Cells[i] = next
				filled++
			}
			continue
		}
		next = cell
	}

	return filled
}
