package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/pkg/constants"
	"github.com/inferloop/csvclean/pkg/errors"
)

// Config contains report generator configuration
type Config struct {
	Provider    string        `json:"provider" mapstructure:"provider"`
	Model       string        `json:"model" mapstructure:"model"`
	APIKey      string        `json:"api_key" mapstructure:"api_key"`
	BaseURL     string        `json:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `json:"temperature" mapstructure:"temperature"`
}

// DefaultConfig returns the default report configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:    constants.DefaultReportProvider,
		Timeout:     constants.DefaultReportTimeout,
		MaxTokens:   constants.DefaultReportTokens,
		Temperature: 0.7,
	}
}

// Input carries everything a report is built from. The step log and
// summary alone are sufficient for the fallback path, so a report can
// always be synthesized with zero external calls.
type Input struct {
	Original TableStats       `json:"original"`
	Cleaned  TableStats       `json:"cleaned"`
	Steps    []cleaning.Step  `json:"steps"`
	Summary  cleaning.Summary `json:"summary"`
}

// Generator produces a human-readable cleaning report, preferring a
// chat-completions provider and falling back to a deterministic local
// report whenever the provider is unavailable or fails.
type Generator struct {
	config *Config
	logger *logrus.Logger
	client *http.Client
}

// NewGenerator creates a new report generator
func NewGenerator(config *Config, logger *logrus.Logger) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = constants.DefaultReportTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Generator{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Generate returns a cleaning report. It never fails: any provider
// error degrades to the deterministic fallback built from the same
// structured inputs.
func (g *Generator) Generate(ctx context.Context, input Input) string {
	text, err := g.generateRemote(ctx, input)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"provider": g.config.Provider,
			"error":    err.Error(),
		}).Warn("Report provider failed, using fallback report")
		return FallbackReport(input.Summary)
	}
	return text
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generateRemote calls the configured chat-completions provider.
func (g *Generator) generateRemote(ctx context.Context, input Input) (string, error) {
	url, model, err := g.endpoint()
	if err != nil {
		return "", err
	}
	if g.config.APIKey == "" {
		return "", errors.NewReportError(errors.CodeMissingAPIKey,
			fmt.Sprintf("no API key configured for provider %q", g.config.Provider))
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a data quality expert. Provide clear, actionable insights about data cleaning operations.",
			},
			{
				Role:    "user",
				Content: buildPrompt(input),
			},
		},
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	})
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeReport, errors.CodeReportFailed, "failed to encode report request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeReport, errors.CodeReportFailed, "failed to build report request")
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeReport, errors.CodeReportFailed, "report provider request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeReport, errors.CodeReportFailed, "failed to read provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewReportError(errors.CodeReportFailed,
			fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeReport, errors.CodeReportFailed, "failed to decode provider response")
	}
	if parsed.Error != nil {
		return "", errors.NewReportError(errors.CodeReportFailed, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", errors.NewReportError(errors.CodeReportFailed, "provider returned no content")
	}

	return parsed.Choices[0].Message.Content, nil
}

// endpoint resolves the provider URL and model. BaseURL overrides the
// provider default, which the tests rely on.
func (g *Generator) endpoint() (string, string, error) {
	model := g.config.Model
	var url string

	switch strings.ToLower(g.config.Provider) {
	case "openai":
		url = "https://api.openai.com/v1/chat/completions"
		if model == "" {
			model = constants.DefaultOpenAIModel
		}
	case "groq":
		url = "https://api.groq.com/openai/v1/chat/completions"
		if model == "" {
			model = constants.DefaultGroqModel
		}
	default:
		return "", "", errors.NewReportError(errors.CodeProviderNotFound,
			fmt.Sprintf("unsupported report provider %q", g.config.Provider))
	}

	if g.config.BaseURL != "" {
		url = strings.TrimRight(g.config.BaseURL, "/") + "/chat/completions"
	}
	return url, model, nil
}

// buildPrompt renders the analysis prompt from the structured inputs.
func buildPrompt(input Input) string {
	var steps strings.Builder
	for _, step := range input.Steps {
		steps.WriteString("- ")
		steps.WriteString(step.Description)
		steps.WriteString("\n")
	}

	names := input.Original.ColumnNames
	if len(names) > 10 {
		names = names[:10]
	}

	return fmt.Sprintf(`Analyze this data cleaning operation and provide a concise, professional report.

ORIGINAL DATA:
- Rows: %d
- Columns: %d
- Column names: %s
- Column types: %s
- Missing values: %d

CLEANING OPERATIONS PERFORMED:
%s
CLEANED DATA:
- Rows: %d
- Columns: %d
- Missing values: %d

SUMMARY:
- Rows removed: %d
- Duplicates removed: %d
- Missing values fixed: %d
- Outliers replaced: %d
- Date columns fixed: %d

Please provide:
1. A brief overview of the data quality before cleaning
2. What issues were found and fixed
3. Data quality improvements achieved
4. Recommendations for further improvements (if any)

Keep the report concise (2-3 paragraphs) and actionable.`,
		input.Original.Rows, input.Original.Columns,
		strings.Join(names, ", "), formatTypes(input.Original.ColumnTypes, names),
		input.Original.MissingValues,
		steps.String(),
		input.Cleaned.Rows, input.Cleaned.Columns, input.Cleaned.MissingValues,
		input.Summary.RowsRemoved, input.Summary.DuplicatesRemoved,
		input.Summary.MissingValuesHandled, input.Summary.OutliersReplaced,
		input.Summary.DateColumnsFixed)
}

// formatTypes renders column types in column order for the prompt.
func formatTypes(types map[string]string, names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if t, ok := types[name]; ok {
			parts = append(parts, name+"="+t)
		}
	}
	return strings.Join(parts, ", ")
}
