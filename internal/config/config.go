package config

// Config holds runtime configuration for the server.
type Config struct {
	Port    string
	Log     LogConfig
	Records RecordsConfig
	Metrics MetricsConfig
	Events  EventsConfig
	CORS    []string
}

// LogConfig selects slog level and handler format.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port: envOrDefault(envPort, defaultPort),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Records: loadRecords(),
		Metrics: loadMetrics(),
		Events:  loadEvents(),
		CORS:    listEnvOrDefault(envCORSOrigins, defaultCORSOrigins),
	}
}
