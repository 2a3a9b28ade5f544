package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/internal/dataset"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleInput() Input {
	return Input{
		Original: TableStats{
			Rows:        5,
			Columns:     2,
			ColumnNames: []string{"name", "age"},
			ColumnTypes: map[string]string{"name": "string", "age": "numeric"},
		},
		Cleaned: TableStats{Rows: 4, Columns: 2},
		Steps: []cleaning.Step{
			{Name: "remove_duplicates", Description: "Removed 1 duplicate rows", Count: 1},
		},
		Summary: cleaning.Summary{
			OriginalRows:      5,
			CleanedRows:       4,
			RowsRemoved:       1,
			DuplicatesRemoved: 1,
		},
	}
}

func TestGenerateUsesProviderResponse(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/chat/completions", r.URL.Path)

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "## Report\nlooks good"}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(&Config{
		Provider: "openai",
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	}, testLogger())

	text := g.Generate(context.Background(), sampleInput())

	assert.Equal(t, "## Report\nlooks good", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Contains(t, gotBody.Messages[1].Content, "Removed 1 duplicate rows")
}

func TestGenerateFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(&Config{
		Provider: "openai",
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	}, testLogger())

	text := g.Generate(context.Background(), sampleInput())
	assert.Equal(t, FallbackReport(sampleInput().Summary), text)
}

func TestGenerateFallsBackWithoutAPIKey(t *testing.T) {
	g := NewGenerator(&Config{Provider: "openai"}, testLogger())

	text := g.Generate(context.Background(), sampleInput())
	assert.Contains(t, text, "## Data Cleaning Report")
}

func TestGenerateFallsBackOnUnknownProvider(t *testing.T) {
	g := NewGenerator(&Config{Provider: "nope", APIKey: "k"}, testLogger())

	text := g.Generate(context.Background(), sampleInput())
	assert.Contains(t, text, "## Data Cleaning Report")
}

func TestGenerateFallsBackOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	g := NewGenerator(&Config{
		Provider: "groq",
		APIKey:   "test-key",
		BaseURL:  srv.URL,
	}, testLogger())

	text := g.Generate(context.Background(), sampleInput())
	assert.Contains(t, text, "## Data Cleaning Report")
}

func TestFallbackReportDeterministic(t *testing.T) {
	summary := cleaning.Summary{
		OriginalRows:         10,
		CleanedRows:          8,
		RowsRemoved:          2,
		DuplicatesRemoved:    1,
		MissingValuesHandled: 3,
		OutliersReplaced:     1,
		DateColumnsFixed:     1,
	}

	first := FallbackReport(summary)
	assert.Equal(t, first, FallbackReport(summary))
	assert.Contains(t, first, "**Original Records:** 10")
	assert.Contains(t, first, "**Records Removed:** 2 (20.0%)")
	assert.Contains(t, first, "**Duplicate Rows Removed:** 1")
}

func TestFallbackReportZeroRows(t *testing.T) {
	// Must not divide by zero on an empty table.
	text := FallbackReport(cleaning.Summary{})
	assert.Contains(t, text, "**Original Records:** 0")
}

func TestBuildTableStats(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader("name,age\nalice,30\nbob,\ncarol,40\n"))
	require.NoError(t, err)

	stats := BuildTableStats(table, classify.NewClassifier(nil))

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Columns)
	assert.Equal(t, 1, stats.MissingValues)
	assert.Equal(t, 1, stats.NumericColumns)
	assert.Equal(t, "numeric", stats.ColumnTypes["age"])
	assert.Equal(t, "string", stats.ColumnTypes["name"])
	assert.InDelta(t, 35.0, stats.ColumnMeans["age"], 1e-9)
}
