package report

import (
	"fmt"
	"strings"

	"github.com/inferloop/csvclean/internal/cleaning"
)

// FallbackReport builds a deterministic markdown report from the
// summary alone, with zero external calls.
func FallbackReport(summary cleaning.Summary) string {
	originalRows := summary.OriginalRows
	if originalRows < 1 {
		originalRows = 1
	}
	removedPct := float64(summary.RowsRemoved) / float64(originalRows) * 100

	report := fmt.Sprintf(`## Data Cleaning Report

### Summary of Operations
- **Original Records:** %d
- **Cleaned Records:** %d
- **Records Removed:** %d (%.1f%%)

### Data Quality Improvements
- **Duplicate Rows Removed:** %d
- **Missing Values Fixed:** %d
- **Outliers Replaced:** %d
- **Date Formats Fixed:** %d

### Recommendations
1. **Review the cleaned data** to ensure quality meets your requirements
2. **Validate date conversions** to confirm accuracy
3. **Check categorical values** for consistency
4. **Consider domain-specific rules** that may need additional cleaning`,
		summary.OriginalRows, summary.CleanedRows,
		summary.RowsRemoved, removedPct,
		summary.DuplicatesRemoved, summary.MissingValuesHandled,
		summary.OutliersReplaced, summary.DateColumnsFixed)

	return strings.TrimSpace(report)
}

// FormatSummary renders the summary as short markdown lines for display.
func FormatSummary(summary cleaning.Summary) string {
	lines := []string{
		fmt.Sprintf("**Original Rows:** %d", summary.OriginalRows),
		fmt.Sprintf("**Cleaned Rows:** %d", summary.CleanedRows),
		fmt.Sprintf("**Rows Removed:** %d", summary.RowsRemoved),
		fmt.Sprintf("**Columns:** %d", summary.Columns),
		fmt.Sprintf("**Missing Values Fixed:** %d", summary.MissingValuesHandled),
		fmt.Sprintf("**Outliers Replaced:** %d", summary.OutliersReplaced),
		fmt.Sprintf("**Date Columns Fixed:** %d", summary.DateColumnsFixed),
	}
	return strings.Join(lines, "\n")
}
