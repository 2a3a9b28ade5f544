package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/csvclean/internal/cleaning"
)

func sampleSteps() []cleaning.Step {
	return []cleaning.Step{
		{Name: "load_csv", Description: "Loaded CSV with 5 rows and 2 columns"},
		{Name: "trim_and_normalize", Description: "Trimmed and normalized 3 string values", Count: 3},
		{Name: "remove_duplicates", Description: "Removed 1 duplicate rows", Count: 1},
	}
}

func TestEmitContainsRecordedSteps(t *testing.T) {
	out, err := Emit(sampleSteps(), []string{"name", "age"}, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded CSV with 5 rows and 2 columns")
	assert.Contains(t, out, "Removed 1 duplicate rows")
	assert.Contains(t, out, `"name",`)
	assert.Contains(t, out, `"age",`)
}

func TestEmitUsesConfiguredParameters(t *testing.T) {
	cfg := cleaning.DefaultConfig()
	cfg.IQRMultiplier = 3
	cfg.Classifier.NumericThreshold = 0.9

	out, err := Emit(sampleSteps(), []string{"v"}, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "IQR_MULTIPLIER = 3")
	assert.Contains(t, out, "NUMERIC_THRESHOLD = 0.9")
}

func TestEmitDefaultParameters(t *testing.T) {
	out, err := Emit(nil, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "NUMERIC_THRESHOLD = 0.8")
	assert.Contains(t, out, "DATE_THRESHOLD = 0.8")
	assert.Contains(t, out, "CATEGORICAL_RATIO = 0.5")
	assert.Contains(t, out, "IQR_MULTIPLIER = 1.5")
}

func TestEmitDeterministic(t *testing.T) {
	first, err := Emit(sampleSteps(), []string{"name", "age"}, nil)
	require.NoError(t, err)

	second, err := Emit(sampleSteps(), []string{"name", "age"}, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEmitIsRunnableScriptShape(t *testing.T) {
	out, err := Emit(sampleSteps(), []string{"v"}, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "import pandas as pd")
	assert.Contains(t, out, "def clean_data(")
	assert.Contains(t, out, `if __name__ == "__main__":`)
	assert.Contains(t, out, "drop_duplicates")
}
