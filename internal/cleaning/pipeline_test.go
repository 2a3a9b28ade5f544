package cleaning

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/errors"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewPipeline(nil, logger)
}

func loadTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return table
}

func renderCSV(t *testing.T, table *dataset.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, table))
	return buf.String()
}

func TestCleanReplacesOutliers(t *testing.T) {
	table := loadTable(t, "value\n10\n20\n30\n40\n1000\n")

	result, err := testPipeline(t).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.OutliersReplaced)
	assert.Equal(t, "value\n10\n20\n30\n40\n30\n", renderCSV(t, result.Table))
}

func TestCleanRemovesDuplicatesAfterNormalization(t *testing.T) {
	csv := "name,score\nJohn,1\n  JOHN  ,1\nJane,2\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.DuplicatesRemoved)
	assert.Equal(t, 2, result.Summary.CleanedRows)
	assert.Equal(t, "name,score\njohn,1\njane,2\n", renderCSV(t, result.Table))
}

func TestCleanImputesNumericMedian(t *testing.T) {
	table := loadTable(t, "value\n1\n2\n\n4\n5\n")

	result, err := testPipeline(t).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.MissingValuesHandled)
	assert.Equal(t, "value\n1\n2\n3\n4\n5\n", renderCSV(t, result.Table))
}

func TestCleanImputesCategoricalMode(t *testing.T) {
	csv := "status\nactive\nactive\nactive\nactive\ninactive\nNA\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.MissingValuesHandled)
	assert.Equal(t, 0, result.Table.MissingCount())
	// Post-imputation the five "active" rows collapse to one.
	assert.Equal(t, 4, result.Summary.DuplicatesRemoved)
}

func TestCleanFixesDateFormats(t *testing.T) {
	csv := "joined\n15/01/2023\n2023-01-15\n1-15-2023\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.DateColumnsFixed)
	// All three renderings converge on the canonical form, so the
	// converged rows deduplicate down to one.
	assert.Equal(t, "joined\n2023-01-15\n", renderCSV(t, result.Table))
	assert.Equal(t, 2, result.Summary.DuplicatesRemoved)
}

func TestCleanForwardFillsDates(t *testing.T) {
	csv := "day\n2023-01-15\n\n2023-01-17\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.MissingValuesHandled)
	assert.Equal(t, 0, result.Table.MissingCount())
}

func TestCleanLeavesAllMissingColumnUntouched(t *testing.T) {
	table := loadTable(t, "a,b\n1,\n2,NA\n")

	result, err := testPipeline(t).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.MissingValuesHandled)
	b := result.Table.Column(1)
	for _, cell := range b.Cells {
		assert.True(t, cell.IsMissing())
	}

	// No column was skipped: an undefined statistic is a no-op, not a
	// degradation.
	for _, step := range result.Steps {
		assert.False(t, step.Skipped, "unexpected skipped step: %+v", step)
	}
}

func TestCleanSummaryIdentity(t *testing.T) {
	csv := "name,v\na,1\na,1\nb,2\nc,3\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, 4, s.OriginalRows)
	assert.Equal(t, s.OriginalRows-s.CleanedRows, s.RowsRemoved)
	assert.Equal(t, 2, s.Columns)
}

func TestCleanDoesNotModifyInput(t *testing.T) {
	table := loadTable(t, "name\n  John  \n")
	before := renderCSV(t, table)

	_, err := testPipeline(t).Clean(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, before, renderCSV(t, table))
}

func TestCleanStepOrder(t *testing.T) {
	csv := "name,age\nJohn,30\njohn,30\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	var names []string
	for _, step := range result.Steps {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{
		"trim_and_normalize",
		"handle_missing",
		"remove_duplicates",
		"detect_outliers",
	}, names)
}

func TestCleanSecondPassIsNoOp(t *testing.T) {
	csv := "name,age,joined\nJohn ,30,15/01/2023\njohn,30,2023-01-15\nJane,NA,2023-01-16\nBob,28,2023-01-17\n"

	p := testPipeline(t)
	first, err := p.Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	second, err := p.Clean(context.Background(), first.Table)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Summary.MissingValuesHandled)
	assert.Equal(t, 0, second.Summary.OutliersReplaced)
	assert.Equal(t, 0, second.Summary.DuplicatesRemoved)
	assert.Equal(t, 0, second.Summary.RowsRemoved)
	assert.Equal(t, renderCSV(t, first.Table), renderCSV(t, second.Table))
}

func TestCleanCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := testPipeline(t).Clean(ctx, loadTable(t, "v\n1\n2\n"))
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeCleaningCanceled, appErr.Code)
}

func TestRunPrependsLoadStep(t *testing.T) {
	result, err := testPipeline(t).Run(context.Background(), strings.NewReader("v\n1\n2\n"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Steps)
	assert.Equal(t, "load_csv", result.Steps[0].Name)
	assert.Contains(t, result.Steps[0].Description, "2 rows")
}

func TestRunSurfacesLoadErrors(t *testing.T) {
	_, err := testPipeline(t).Run(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.IsLoadError(err))
}

func TestCleanZeroIQRFlagsEverythingOffTheValue(t *testing.T) {
	// With four identical values both fences collapse onto 5, so the 9 is
	// an outlier and the replacement median is 5.
	csv := "id,v\n1,5\n2,5\n3,5\n4,5\n5,9\n"

	result, err := testPipeline(t).Clean(context.Background(), loadTable(t, csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.OutliersReplaced)
	assert.Equal(t, "id,v\n1,5\n2,5\n3,5\n4,5\n5,5\n", renderCSV(t, result.Table))
}

func TestCleanMixedNumericTextColumn(t *testing.T) {
	// "42" survives as text after normalization, but still counts toward
	// numeric classification and outlier bounds.
	table := dataset.NewTable([]string{"v"})
	table.AppendRow([]dataset.Cell{dataset.Number(10)})
	table.AppendRow([]dataset.Cell{dataset.Text("20")})
	table.AppendRow([]dataset.Cell{dataset.Number(30)})
	table.AppendRow([]dataset.Cell{dataset.Number(40)})
	table.AppendRow([]dataset.Cell{dataset.Number(1000)})

	result, err := testPipeline(t).Clean(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.OutliersReplaced)
}
