// Package script serializes the pipeline's logged decisions into a
// standalone Python script that replays the same cleaning operations on
// a new CSV. It contains no cleaning logic of its own: everything it
// emits is reconstructed from the step log and the column list.
package script

import (
	"strings"
	"text/template"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/pkg/constants"
)

// Params carries the decisions the emitted script replays.
type Params struct {
	Steps            []cleaning.Step
	Columns          []string
	NumericThreshold float64
	DateThreshold    float64
	CategoricalRatio float64
	IQRMultiplier    float64
}

// Emit renders the standalone cleaning script. Output is deterministic
// for a given set of parameters.
func Emit(steps []cleaning.Step, columns []string, config *cleaning.Config) (string, error) {
	if config == nil {
		config = cleaning.DefaultConfig()
	}
	if config.Classifier == nil {
		config.Classifier = classify.DefaultConfig()
	}
	params := Params{
		Steps:            steps,
		Columns:          columns,
		NumericThreshold: config.Classifier.NumericThreshold,
		DateThreshold:    config.Classifier.DateThreshold,
		CategoricalRatio: config.Classifier.CategoricalRatio,
		IQRMultiplier:    config.IQRMultiplier,
	}
	if params.NumericThreshold == 0 {
		params.NumericThreshold = constants.DefaultNumericThreshold
	}
	if params.DateThreshold == 0 {
		params.DateThreshold = constants.DefaultDateThreshold
	}
	if params.CategoricalRatio == 0 {
		params.CategoricalRatio = constants.DefaultCategoricalRatio
	}
	if params.IQRMultiplier == 0 {
		params.IQRMultiplier = constants.DefaultIQRMultiplier
	}

	var buf strings.Builder
	if err := scriptTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var scriptTemplate = template.Must(template.New("cleaning_script").Parse(`"""
Auto-generated data cleaning script.
Replays the cleaning operations recorded below on a new CSV.

Operations performed:
{{- range .Steps}}
#   - {{.Description}}
{{- end}}
"""

import re
import sys

import numpy as np
import pandas as pd

NUMERIC_THRESHOLD = {{.NumericThreshold}}
DATE_THRESHOLD = {{.DateThreshold}}
CATEGORICAL_RATIO = {{.CategoricalRatio}}
IQR_MULTIPLIER = {{.IQRMultiplier}}

EXPECTED_COLUMNS = [
{{- range .Columns}}
    {{printf "%q" .}},
{{- end}}
]


def clean_string(value):
    """Trim, lowercase, and strip unsafe characters."""
    if not isinstance(value, str):
        return value
    value = value.strip().lower()
    value = re.sub(r"[^a-z0-9\s\-._/:,]", "", value)
    return re.sub(r"\s+", " ", value).strip()


def detect_column_type(series):
    """Classify a column as numeric, date, categorical, or string."""
    non_null = series.dropna()
    if len(non_null) == 0:
        return "unknown"

    numeric = pd.to_numeric(series, errors="coerce")
    if numeric.notna().sum() >= len(non_null) * NUMERIC_THRESHOLD:
        return "numeric"

    dates = pd.to_datetime(series, errors="coerce", dayfirst=True)
    if dates.notna().sum() >= len(non_null) * DATE_THRESHOLD:
        return "date"

    if len(non_null.unique()) / len(non_null) < CATEGORICAL_RATIO:
        return "categorical"
    return "string"


def clean_data(input_csv, output_csv="cleaned_data.csv"):
    df = pd.read_csv(input_csv)
    original_rows = len(df)

    # Step 1: trim and normalize strings
    for col in df.select_dtypes(include=["object"]).columns:
        df[col] = df[col].apply(clean_string)

    # Step 2: fix date formats
    for col in df.columns:
        if detect_column_type(df[col]) == "date":
            converted = pd.to_datetime(df[col], errors="coerce", dayfirst=True)
            df[col] = converted.dt.strftime("%Y-%m-%d").fillna(df[col])

    # Step 3: handle missing values
    for col in df.columns:
        if df[col].isna().sum() == 0:
            continue
        col_type = detect_column_type(df[col])
        if col_type == "numeric":
            median_val = pd.to_numeric(df[col], errors="coerce").median()
            if not pd.isna(median_val):
                df[col] = df[col].fillna(median_val)
        elif col_type == "categorical":
            mode_val = df[col].mode()
            if len(mode_val) > 0:
                df[col] = df[col].fillna(mode_val[0])
        elif col_type == "date":
            df[col] = df[col].ffill().bfill()

    # Step 4: remove duplicates (keep first)
    df = df.drop_duplicates(keep="first")

    # Step 5: replace IQR outliers with the pre-replacement median
    for col in df.select_dtypes(include=[np.number]).columns:
        q1 = df[col].quantile(0.25)
        q3 = df[col].quantile(0.75)
        iqr = q3 - q1
        lower = q1 - IQR_MULTIPLIER * iqr
        upper = q3 + IQR_MULTIPLIER * iqr
        mask = (df[col] < lower) | (df[col] > upper)
        if mask.sum() > 0:
            df.loc[mask, col] = df[col].median()

    df.to_csv(output_csv, index=False)

    print("Cleaning summary:")
    print(f"  Original rows: {original_rows}")
    print(f"  Cleaned rows: {len(df)}")
    print(f"  Rows removed: {original_rows - len(df)}")
    print(f"  Columns: {len(df.columns)}")


if __name__ == "__main__":
    if len(sys.argv) < 2:
        print("Usage: python clean_data.py <input_csv> [output_csv]")
        sys.exit(1)
    clean_data(sys.argv[1], sys.argv[2] if len(sys.argv) > 2 else "cleaned_data.csv")
`))
