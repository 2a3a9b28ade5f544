package cleaning

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/csvclean/internal/classify"
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/pkg/constants"
	"github.com/inferloop/csvclean/pkg/errors"
)

// Config contains pipeline configuration
type Config struct {
	Classifier    *classify.Config `json:"classifier" mapstructure:"classifier"`
	IQRMultiplier float64          `json:"iqr_multiplier" mapstructure:"iqr_multiplier"`
	ColumnWorkers int              `json:"column_workers" mapstructure:"column_workers"`
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() *Config {
	return &Config{
		Classifier:    classify.DefaultConfig(),
		IQRMultiplier: constants.DefaultIQRMultiplier,
		ColumnWorkers: constants.DefaultColumnWorkers,
	}
}

// Step is one append-only record of a cleaning operation. The step log
// is ordered by execution and carries enough detail (stage, column,
// count) for script generation and reporting to reconstruct what was
// done without re-running the pipeline.
type Step struct {
	Name        string `json:"step"`
	Description string `json:"description"`
	Column      string `json:"column,omitempty"`
	Count       int    `json:"count,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
}

// Summary holds the fixed-shape cleaning metrics.
type Summary struct {
	OriginalRows         int `json:"original_rows"`
	CleanedRows          int `json:"cleaned_rows"`
	RowsRemoved          int `json:"rows_removed"`
	Columns              int `json:"columns"`
	MissingValuesHandled int `json:"missing_values_handled"`
	OutliersReplaced     int `json:"outliers_replaced"`
	DateColumnsFixed     int `json:"date_columns_fixed"`
	DuplicatesRemoved    int `json:"duplicates_removed"`
}

// Result is the outcome of one pipeline invocation.
type Result struct {
	Table   *dataset.Table
	Steps   []Step
	Summary Summary
}

// Pipeline runs the cleaning stages in fixed order over a working copy
// of a table. Each invocation owns its working table exclusively; the
// pipeline itself holds no per-invocation state, so one instance is safe
// for concurrent use.
type Pipeline struct {
	logger     *logrus.Logger
	config     *Config
	classifier *classify.Classifier
}

// NewPipeline creates a new cleaning pipeline
func NewPipeline(config *Config, logger *logrus.Logger) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ColumnWorkers <= 0 {
		config.ColumnWorkers = constants.DefaultColumnWorkers
	}
	if config.IQRMultiplier <= 0 {
		config.IQRMultiplier = constants.DefaultIQRMultiplier
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{
		logger:     logger,
		config:     config,
		classifier: classify.NewClassifier(config.Classifier),
	}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *Config {
	return p.config
}

// Classifier returns the pipeline's column classifier.
func (p *Pipeline) Classifier() *classify.Classifier {
	return p.classifier
}

// Run loads CSV bytes and cleans the resulting table. Load failures are
// the only errors surfaced to the caller besides cancellation.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	table, err := dataset.ReadCSV(r)
	if err != nil {
		p.logger.WithError(err).Error("Failed to load CSV")
		return nil, err
	}

	result, err := p.Clean(ctx, table)
	if err != nil {
		return nil, err
	}

	loadStep := Step{
		Name:        "load_csv",
		Description: fmt.Sprintf("Loaded CSV with %d rows and %d columns", table.RowCount(), table.ColumnCount()),
	}
	result.Steps = append([]Step{loadStep}, result.Steps...)
	return result, nil
}

// Clean runs the stage sequence over a clone of table: normalize
// strings, fix dates, impute missing values, remove duplicates, correct
// outliers, finalize. The input table is never modified. A canceled
// context aborts the run with no partial artifacts; a failure inside a
// stage on a single column skips that column for that stage only and is
// recorded in the step log.
func (p *Pipeline) Clean(ctx context.Context, table *dataset.Table) (*Result, error) {
	working := table.Clone()

	summary := Summary{
		OriginalRows: working.RowCount(),
		Columns:      working.ColumnCount(),
	}
	var steps []Step

	stages := []struct {
		name string
		run  func(context.Context, *dataset.Table, *Summary) ([]Step, error)
	}{
		{"trim_and_normalize", p.normalizeStrings},
		{"fix_dates", p.fixDates},
		{"handle_missing", p.imputeMissing},
		{"remove_duplicates", p.removeDuplicates},
		{"detect_outliers", p.correctOutliers},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			p.logger.WithFields(logrus.Fields{
				"stage": stage.name,
				"error": err.Error(),
			}).Warn("Cleaning canceled")
			return nil, errors.WrapError(err, errors.ErrorTypeStage, errors.CodeCleaningCanceled, "cleaning canceled")
		}

		stageSteps, err := stage.run(ctx, working, &summary)
		if err != nil {
			return nil, err
		}
		steps = append(steps, stageSteps...)
	}

	summary.CleanedRows = working.RowCount()
	summary.RowsRemoved = summary.OriginalRows - summary.CleanedRows

	p.logger.WithFields(logrus.Fields{
		"original_rows":      summary.OriginalRows,
		"cleaned_rows":       summary.CleanedRows,
		"rows_removed":       summary.RowsRemoved,
		"missing_handled":    summary.MissingValuesHandled,
		"outliers_replaced":  summary.OutliersReplaced,
		"date_columns_fixed": summary.DateColumnsFixed,
		"duplicates_removed": summary.DuplicatesRemoved,
	}).Info("Cleaning pipeline completed")

	return &Result{Table: working, Steps: steps, Summary: summary}, nil
}

// columnOutcome is the per-column result of a parallel stage pass.
type columnOutcome struct {
	count   int
	skipped bool
	err     error
}

// forEachColumn applies fn to every column, bounded by the configured
// worker count. Columns are independent within a stage; each worker owns
// exactly one column's cells for the stage's duration, so parallelism
// cannot change the output. A panic or error inside fn marks only that
// column as skipped. Only cancellation aborts the pass.
func (p *Pipeline) forEachColumn(ctx context.Context, t *dataset.Table, fn func(i int, col *dataset.Column) (int, error)) ([]columnOutcome, error) {
	cols := t.Columns()
	outcomes := make([]columnOutcome, len(cols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.ColumnWorkers)

	for i, col := range cols {
		i, col := i, col
		g.Go(func() (err error) {
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = columnOutcome{skipped: true, err: fmt.Errorf("panic: %v", r)}
					err = nil
				}
			}()
			count, ferr := fn(i, col)
			if ferr != nil {
				outcomes[i] = columnOutcome{skipped: true, err: ferr}
				return nil
			}
			outcomes[i] = columnOutcome{count: count}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStage, errors.CodeCleaningCanceled, "cleaning canceled")
	}
	return outcomes, nil
}

// skippedSteps converts failed column outcomes into degraded step log
// entries so skipped columns stay visible to the caller.
func (p *Pipeline) skippedSteps(stage string, t *dataset.Table, outcomes []columnOutcome) []Step {
	var steps []Step
	for i, outcome := range outcomes {
		if !outcome.skipped {
			continue
		}
		name := t.Column(i).Name
		p.logger.WithFields(logrus.Fields{
			"stage":  stage,
			"column": name,
			"error":  outcome.err.Error(),
		}).Warn("Column skipped by stage")
		steps = append(steps, Step{
			Name:        stage,
			Column:      name,
			Description: fmt.Sprintf("Skipped column %q: %v", name, outcome.err),
			Skipped:     true,
		})
	}
	return steps
}
