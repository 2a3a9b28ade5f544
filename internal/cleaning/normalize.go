package cleaning

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/inferloop/csvclean/internal/dataset"
)

// The safe character set keeps letters, digits, whitespace, and the
// punctuation that carries meaning in tabular values: separators used by
// dates (/ : ,) and by identifiers (- . _). Everything else is stripped.
var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s\-._/:,]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// NormalizeString trims, lowercases, strips characters outside the safe
// set, and collapses whitespace runs. Total: it never fails on any
// input.
func NormalizeString(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	v = disallowedChars.ReplaceAllString(v, "")
	v = whitespaceRuns.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

// normalizeStrings trims and normalizes every text cell in object-like
// columns (columns holding at least one text value; pure numeric columns
// are untouched). Missing cells and numeric cells are never modified.
// Emits one step record counting the cells whose value changed.
func (p *Pipeline) normalizeStrings(ctx context.Context, t *dataset.Table, summary *Summary) ([]Step, error) {
	outcomes, err := p.forEachColumn(ctx, t, func(i int, col *dataset.Column) (int, error) {
		if !objectLike(col) {
			return 0, nil
		}
		changed := 0
		for j, cell := range col.Cells {
			text, ok := cell.Text()
			if !ok {
				continue
			}
			normalized := NormalizeString(text)
			if normalized != text {
				col.Cells[j] = dataset.Text(normalized)
				changed++
			}
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, outcome := range outcomes {
		total += outcome.count
	}

	steps := p.skippedSteps("trim_and_normalize", t, outcomes)
	steps = append(steps, Step{
		Name:        "trim_and_normalize",
		Description: fmt.Sprintf("Trimmed and normalized %d string values", total),
		Count:       total,
	})
	return steps, nil
}

// objectLike reports whether a column holds any textual value. This is
// the raw, pre-classification gate for string normalization: it does not
// depend on the numeric or date cascade.
func objectLike(col *dataset.Column) bool {
	for _, cell := range col.Cells {
		if _, ok := cell.Text(); ok {
			return true
		}
	}
	return false
}
