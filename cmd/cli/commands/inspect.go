package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
)

type InspectOptions struct {
	InputFile    string
	OutputFormat string
}

// columnProfile is one row of the inspection output.
type columnProfile struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Rows         int    `json:"rows"`
	MissingCount int    `json:"missing_count"`
	DistinctText int    `json:"distinct_values"`
}

func NewInspectCmd() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show inferred column types for a CSV file",
		Long: `Load a CSV file and report, per column, the inferred type (numeric,
date, categorical, string), missing cell count, and distinct value
count, without modifying the data.`,
		Example: `  # Inspect a file
  csvclean-cli inspect --input data.csv

  # Machine-readable output
  csvclean-cli inspect -i data.csv --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input CSV file (required)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runInspect(opts *InspectOptions) error {
	input, err := os.Open(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer input.Close()

	table, err := dataset.ReadCSV(input)
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	classifier := classify.NewClassifier(nil)
	profiles := make([]columnProfile, 0, table.ColumnCount())
	for _, col := range table.Columns() {
		profiles = append(profiles, columnProfile{
			Name:         col.Name,
			Type:         string(classifier.Classify(col)),
			Rows:         len(col.Cells),
			MissingCount: col.MissingCount(),
			DistinctText: distinctCount(col),
		})
	}

	switch strings.ToLower(opts.OutputFormat) {
	case "json":
		data, err := json.MarshalIndent(profiles, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("%s: %d rows, %d columns\n\n", opts.InputFile, table.RowCount(), table.ColumnCount())
		fmt.Printf("%-24s %-12s %8s %8s\n", "COLUMN", "TYPE", "MISSING", "DISTINCT")
		for _, p := range profiles {
			fmt.Printf("%-24s %-12s %8d %8d\n", p.Name, p.Type, p.MissingCount, p.DistinctText)
		}
	}

	return nil
}

func distinctCount(col *dataset.Column) int {
	seen := make(map[string]struct{})
	for _, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		seen[cell.String()] = struct{}{}
	}
	return len(seen)
}
