package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cliconfig "github.com/inferloop/csvclean/cmd/cli/config"
	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/internal/report"
	"github.com/inferloop/csvclean/internal/script"
)

type CleanOptions struct {
	InputFile        string
	OutputFile       string
	ScriptFile       string
	ReportFile       string
	NumericThreshold float64
	DateThreshold    float64
	CategoricalRatio float64
	IQRMultiplier    float64
	Workers          int
	Quiet            bool
}

func NewCleanCmd() *cobra.Command {
	opts := &CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a CSV file",
		Long: `Clean a CSV file: normalize strings, fix date formats, impute missing
values, remove duplicate rows, and replace IQR outliers with the column
median. Writes the cleaned CSV and, optionally, a replay script and a
cleaning report.`,
		Example: `  # Clean a file and write the result
  csvclean-cli clean --input data.csv --output cleaned.csv

  # Also emit the replay script and a report
  csvclean-cli clean -i data.csv -o cleaned.csv --script clean_data.py --report report.md

  # Tune the outlier fence
  csvclean-cli clean -i data.csv -o cleaned.csv --iqr-multiplier 3.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input CSV file (required)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "cleaned_data.csv", "Output CSV file (- for stdout)")
	cmd.Flags().StringVar(&opts.ScriptFile, "script", "", "Write the replay script to this path")
	cmd.Flags().StringVar(&opts.ReportFile, "report", "", "Write the cleaning report to this path (- for stdout)")
	cmd.Flags().Float64Var(&opts.NumericThreshold, "numeric-threshold", 0, "Share of parseable values for a numeric column (default from config)")
	cmd.Flags().Float64Var(&opts.DateThreshold, "date-threshold", 0, "Share of parseable values for a date column (default from config)")
	cmd.Flags().Float64Var(&opts.CategoricalRatio, "categorical-ratio", 0, "Distinct ratio below which a column is categorical (default from config)")
	cmd.Flags().Float64Var(&opts.IQRMultiplier, "iqr-multiplier", 0, "IQR fence multiplier (default from config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent column workers (default from config)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the summary output")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runClean(ctx context.Context, opts *CleanOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cliCfg, err := cliconfig.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load CLI config: %w", err)
	}

	pipelineCfg := buildPipelineConfig(cliCfg, opts)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if opts.Quiet {
		logger.SetLevel(logrus.WarnLevel)
	}

	input, err := os.Open(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer input.Close()

	pipeline := cleaning.NewPipeline(pipelineCfg, logger)
	result, err := pipeline.Run(ctx, input)
	if err != nil {
		return fmt.Errorf("cleaning failed: %w", err)
	}

	if err := writeCleanedCSV(opts.OutputFile, result.Table); err != nil {
		return err
	}

	if opts.ScriptFile != "" {
		replay, err := script.Emit(result.Steps, result.Table.ColumnNames(), pipelineCfg)
		if err != nil {
			return fmt.Errorf("failed to render replay script: %w", err)
		}
		if err := os.WriteFile(opts.ScriptFile, []byte(replay), 0644); err != nil {
			return fmt.Errorf("failed to write replay script: %w", err)
		}
	}

	if opts.ReportFile != "" {
		if err := writeReport(opts.ReportFile, result.Summary); err != nil {
			return err
		}
	}

	if !opts.Quiet {
		printSummary(os.Stderr, result)
	}

	return nil
}

func buildPipelineConfig(cliCfg *cliconfig.CLIConfig, opts *CleanOptions) *cleaning.Config {
	cfg := cleaning.DefaultConfig()

	cfg.Classifier.NumericThreshold = firstPositive(opts.NumericThreshold, cliCfg.Pipeline.NumericThreshold, cfg.Classifier.NumericThreshold)
	cfg.Classifier.DateThreshold = firstPositive(opts.DateThreshold, cliCfg.Pipeline.DateThreshold, cfg.Classifier.DateThreshold)
	cfg.Classifier.CategoricalRatio = firstPositive(opts.CategoricalRatio, cliCfg.Pipeline.CategoricalRatio, cfg.Classifier.CategoricalRatio)
	cfg.IQRMultiplier = firstPositive(opts.IQRMultiplier, cliCfg.Pipeline.IQRMultiplier, cfg.IQRMultiplier)
	if opts.Workers > 0 {
		cfg.ColumnWorkers = opts.Workers
	} else if cliCfg.Pipeline.ColumnWorkers > 0 {
		cfg.ColumnWorkers = cliCfg.Pipeline.ColumnWorkers
	}

	return cfg
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func writeCleanedCSV(path string, table *dataset.Table) error {
	if path == "-" {
		return dataset.WriteCSV(os.Stdout, table)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := dataset.WriteCSV(out, table); err != nil {
		return fmt.Errorf("failed to write cleaned CSV: %w", err)
	}
	return nil
}

func writeReport(path string, summary cleaning.Summary) error {
	text := report.FallbackReport(summary)
	if path == "-" {
		fmt.Println(text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func printSummary(w *os.File, result *cleaning.Result) {
	fmt.Fprintln(w, "\nCleaning summary:")
	fmt.Fprintf(w, "  Original rows: %d\n", result.Summary.OriginalRows)
	fmt.Fprintf(w, "  Cleaned rows: %d\n", result.Summary.CleanedRows)
	fmt.Fprintf(w, "  Rows removed: %d\n", result.Summary.RowsRemoved)
	fmt.Fprintf(w, "  Missing values handled: %d\n", result.Summary.MissingValuesHandled)
	fmt.Fprintf(w, "  Outliers replaced: %d\n", result.Summary.OutliersReplaced)
	fmt.Fprintf(w, "  Date columns fixed: %d\n", result.Summary.DateColumnsFixed)
	fmt.Fprintf(w, "  Duplicates removed: %d\n", result.Summary.DuplicatesRemoved)
}
