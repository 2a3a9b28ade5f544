package cleaning

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/constants"
)

// fixDates rewrites every date-classified column to the canonical
// YYYY-MM-DD format. Values inside a qualifying column that still fail
// to parse are left unchanged (partial success, not a column failure).
// Each converted column contributes one step record and increments
// date_columns_fixed once, regardless of how many cells changed.
func (p *Pipeline) fixDates(ctx context.Context, t *dataset.Table, summary *Summary) ([]Step, error) {
	converted := make([]bool, t.ColumnCount())
	var columnsFixed int64

	outcomes, err := p.forEachColumn(ctx, t, func(i int, col *dataset.Column) (int, error) {
		if p.classifier.Classify(col) != classify.TypeDate {
			return 0, nil
		}

		changed := 0
		for j, cell := range col.Cells {
			text, ok := cell.Text()
			if !ok {
				continue
			}
			parsed, ok := classify.ParseDate(text)
			if !ok {
				continue
			}
			rendered := parsed.Format(constants.DateOutputFormat)
			if rendered != text {
				col.Cells[j] = dataset.Text(rendered)
				changed++
			}
		}

		converted[i] = true
		atomic.AddInt64(&columnsFixed, 1)
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	summary.DateColumnsFixed += int(columnsFixed)

	steps := p.skippedSteps("fix_dates", t, outcomes)
	for i, outcome := range outcomes {
		if outcome.skipped || !converted[i] {
			continue
		}
		name := t.Column(i).Name
		steps = append(steps, Step{
			Name:        "fix_dates",
			Column:      name,
			Description: fmt.Sprintf("Converted column %q to YYYY-MM-DD format", name),
			Count:       outcome.count,
		})
	}
	return steps, nil
}
