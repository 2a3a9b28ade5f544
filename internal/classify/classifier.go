package classify

import (
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/constants"
)

// ColumnType is the semantic type assigned to a column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeDate        ColumnType = "date"
	TypeCategorical ColumnType = "categorical"
	TypeString      ColumnType = "string"
	TypeUnknown     ColumnType = "unknown"
)

// Config contains the classifier thresholds. Both parse thresholds are
// inclusive: a column with exactly the threshold share of parseable
// values qualifies.
type Config struct {
	NumericThreshold float64 `json:"numeric_threshold" mapstructure:"numeric_threshold"`
	DateThreshold    float64 `json:"date_threshold" mapstructure:"date_threshold"`
	CategoricalRatio float64 `json:"categorical_ratio" mapstructure:"categorical_ratio"`
}

// DefaultConfig returns the default classifier thresholds.
func DefaultConfig() *Config {
	return &Config{
		NumericThreshold: constants.DefaultNumericThreshold,
		DateThreshold:    constants.DefaultDateThreshold,
		CategoricalRatio: constants.DefaultCategoricalRatio,
	}
}

// Classifier assigns a semantic type to a column by inspecting its
// non-missing cells. Classification is deterministic, side-effect free,
// and recomputed on every call; nothing is memoized, so concurrent
// pipeline invocations cannot leak state through it.
type Classifier struct {
	config *Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Classifier{config: config}
}

// Classify returns the column's semantic type. The tests run as an
// ordered cascade and the first match wins: numeric, then date, then
// categorical, then string. A column with zero non-missing cells is
// unknown and is left untouched by every stage.
func (c *Classifier) Classify(col *dataset.Column) ColumnType {
	cells := col.NonMissing()
	if len(cells) == 0 {
		return TypeUnknown
	}

	if numericRatio(cells) >= c.config.NumericThreshold {
		return TypeNumeric
	}
	if dateRatio(cells) >= c.config.DateThreshold {
		return TypeDate
	}
	if distinctRatio(cells) < c.config.CategoricalRatio {
		return TypeCategorical
	}
	return TypeString
}

// numericRatio returns the share of cells carrying a numeric value.
func numericRatio(cells []dataset.Cell) float64 {
	parsed := 0
	for _, cell := range cells {
		if _, ok := cell.NumericValue(); ok {
			parsed++
		}
	}
	return float64(parsed) / float64(len(cells))
}

// dateRatio returns the share of cells that parse as a calendar date.
func dateRatio(cells []dataset.Cell) float64 {
	parsed := 0
	for _, cell := range cells {
		if text, ok := cell.Text(); ok {
			if _, ok := ParseDate(text); ok {
				parsed++
			}
		}
	}
	return float64(parsed) / float64(len(cells))
}

// distinctRatio returns distinct values over total non-missing values.
func distinctRatio(cells []dataset.Cell) float64 {
	seen := make(map[string]bool, len(cells))
	for _, cell := range cells {
		seen[cell.String()] = true
	}
	return float64(len(seen)) / float64(len(cells))
}
