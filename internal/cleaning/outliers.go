package cleaning

import (
	"context"
	"fmt"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
)

// correctOutliers replaces IQR outliers in numeric columns with the
// column median. Bounds are Q1/Q3 +/- multiplier*IQR with strict
// comparison; the replacement median is computed once over the
// pre-replacement values, so replacements cannot skew it. Running after
// imputation means bounds are computed on complete columns.
//
// A column with IQR == 0 collapses both bounds onto the single value, so
// anything off that value is flagged.
func (p *Pipeline) correctOutliers(ctx context.Context, t *dataset.Table, summary *Summary) ([]Step, error) {
	outcomes, err := p.forEachColumn(ctx, t, func(i int, col *dataset.Column) (int, error) {
		if p.classifier.Classify(col) != classify.TypeNumeric {
			return 0, nil
		}

		values := col.NumericValues()
		q1, ok := quantile(0.25, values)
		if !ok {
			return 0, nil
		}
		q3, _ := quantile(0.75, values)
		med, _ := median(values)

		iqr := q3 - q1
		lower := q1 - p.config.IQRMultiplier*iqr
		upper := q3 + p.config.IQRMultiplier*iqr

		replaced := 0
		for j, cell := range col.Cells {
			v, ok := cell.NumericValue()
			if !ok {
				continue
			}
			if v < lower || v > upper {
				col.Cells[j] = dataset.Number(med)
				replaced++
			}
		}
		return replaced, nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, outcome := range outcomes {
		total += outcome.count
	}
	summary.OutliersReplaced += total

	steps := p.skippedSteps("detect_outliers", t, outcomes)
	steps = append(steps, Step{
		Name:        "detect_outliers",
		Description: fmt.Sprintf("Detected and replaced %d outliers using the IQR method", total),
		Count:       total,
	})
	return steps, nil
}
