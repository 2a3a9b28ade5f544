package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/csvclean/pkg/errors"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Cell
	}{
		{"empty is missing", "", Missing()},
		{"whitespace is missing", "   ", Missing()},
		{"na is missing", "na", Missing()},
		{"NA is missing", "NA", Missing()},
		{"n/a is missing", "N/A", Missing()},
		{"nan is missing", "NaN", Missing()},
		{"null is missing", "null", Missing()},
		{"none is missing", "None", Missing()},
		{"padded token is missing", "  NULL  ", Missing()},
		{"integer", "42", Number(42)},
		{"float", "3.14", Number(3.14)},
		{"negative", "-7", Number(-7)},
		{"scientific", "1e3", Number(1000)},
		{"padded number", " 42 ", Number(42)},
		{"text", "hello", Text("hello")},
		{"text keeps raw spacing", "  John  ", Text("  John  ")},
		{"nanette is text, not missing", "nanette", Text("nanette")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseCell(tt.raw)))
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "name,age,city\nJohn,30,NYC\nJane,NA,\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 3, table.ColumnCount())
	assert.Equal(t, []string{"name", "age", "city"}, table.ColumnNames())

	age := table.Column(1)
	v, ok := age.Cells[0].Number()
	require.True(t, ok)
	assert.Equal(t, 30.0, v)
	assert.True(t, age.Cells[1].IsMissing())

	city := table.Column(2)
	assert.True(t, city.Cells[1].IsMissing())
	assert.Equal(t, 2, table.MissingCount())
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeEmptyInput, appErr.Code)
	assert.True(t, errors.IsLoadError(err))
}

func TestReadCSVZeroColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("\n"))
	require.Error(t, err)
	assert.True(t, errors.IsLoadError(err))
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5\n"

	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeRowLengthMismatch, appErr.Code)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
	assert.Equal(t, 2, table.ColumnCount())
}

func TestWriteCSV(t *testing.T) {
	table := NewTable([]string{"name", "score"})
	table.AppendRow([]Cell{Text("alice"), Number(3)})
	table.AppendRow([]Cell{Text("bob"), Missing()})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	assert.Equal(t, "name,score\nalice,3\nbob,\n", buf.String())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	input := "id,value\n1,apple\n2,banana\n"
	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.Equal(t, input, buf.String())
}
