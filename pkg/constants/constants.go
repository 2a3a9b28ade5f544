package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "csvclean-server"
	AppDescription = "Statistical CSV Cleaning Service"
	AppVersion     = "0.1.0"

	// API constants
	APIVersion = "v1"
	APIPrefix  = "/api/v1"

	// Default configuration values
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Classifier defaults. The numeric and date thresholds are inclusive:
	// a column with exactly this share of parseable values qualifies.
	DefaultNumericThreshold = 0.80
	DefaultDateThreshold    = 0.80
	DefaultCategoricalRatio = 0.50

	// Outlier defaults
	DefaultIQRMultiplier = 1.5

	// Pipeline defaults
	DefaultColumnWorkers   = 4
	DefaultCleaningTimeout = 5 * time.Minute

	// Date handling. DateOutputFormat is the canonical render format;
	// parse formats live in the classify package.
	DateOutputFormat = "2006-01-02"

	// Report defaults
	DefaultReportProvider = "openai"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultGroqModel      = "mixtral-8x7b-32768"
	DefaultReportTimeout  = 30 * time.Second
	DefaultReportTokens   = 500

	// File size limits
	MaxUploadSize = 100 * 1024 * 1024 // 100MB
)

// HTTP header and content type constants
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"

	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"
)
