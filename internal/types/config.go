package types

type RunMode string

const (
	// ModeLocal runs the API server against a local postgres and creates the schema on start
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server against the postgres plan store
	ModeAPI RunMode = "api"
	// ModeRemote runs the API server against plans fetched from the billing backend
	ModeRemote RunMode = "remote"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
