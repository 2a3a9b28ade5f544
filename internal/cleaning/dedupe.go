package cleaning

import (
	"context"
	"fmt"

	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/errors"
)

// removeDuplicates drops every row whose signature over the current
// (already normalized) cell values matches an earlier row; the first
// occurrence is kept. Running after the normalizers is deliberate:
// "John Doe" and " john doe " have already collapsed to the same value
// by the time signatures are computed.
func (p *Pipeline) removeDuplicates(ctx context.Context, t *dataset.Table, summary *Summary) ([]Step, error) {
	rows := t.RowCount()
	seen := make(map[string]bool, rows)
	keep := make([]bool, rows)
	removed := 0

	for i := 0; i < rows; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapError(err, errors.ErrorTypeStage, errors.CodeCleaningCanceled, "cleaning canceled")
			}
		}
		sig := t.RowSignature(i)
		if seen[sig] {
			removed++
			continue
		}
		seen[sig] = true
		keep[i] = true
	}

	if removed > 0 {
		t.KeepRows(keep)
	}
	summary.DuplicatesRemoved += removed

	return []Step{{
		Name:        "remove_duplicates",
		Description: fmt.Sprintf("Removed %d duplicate rows", removed),
		Count:       removed,
	}}, nil
}
