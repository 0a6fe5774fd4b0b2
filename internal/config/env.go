// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Server
	EnvPort            = "HRBOT_PORT"
	EnvLogLevel        = "HRBOT_LOG_LEVEL"
	EnvShutdownTimeout = "HRBOT_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir        = "HRBOT_DATA_DIR"
	EnvEmployeeCSV    = "HRBOT_EMPLOYEES_CSV"
	EnvHealthPlansCSV = "HRBOT_HEALTH_PLANS_CSV"

	// Chat
	EnvChatTimeout      = "HRBOT_CHAT_TIMEOUT"
	EnvMaxQuestionChars = "HRBOT_MAX_QUESTION_CHARS"
	EnvW2TaxYear        = "HRBOT_W2_TAX_YEAR"

	// HR Dashboard
	EnvHRUsername = "HRBOT_HR_USERNAME"
	EnvHRPassword = "HRBOT_HR_PASSWORD"

	// Metrics
	EnvMetricsUsername = "HRBOT_METRICS_USERNAME"
	EnvMetricsPassword = "HRBOT_METRICS_PASSWORD"

	// Mail
	EnvHRMailAddress = "HRBOT_HR_MAIL_ADDRESS"

	// Better Stack Feature
	EnvBetterStackToken    = "HRBOT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "HRBOT_BETTERSTACK_ENDPOINT"

	// Sentry Feature
	EnvSentryDSN         = "HRBOT_SENTRY_DSN"
	EnvSentryEnvironment = "HRBOT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "HRBOT_SENTRY_SAMPLE_RATE"
)
