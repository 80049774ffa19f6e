package config

const (
	envPort         = "PORT"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envDataDir      = "DATA_DIR"
	envGamesFile    = "GAMES_FILE"
	envStatsFile    = "STATS_FILE"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
	envRedisURL     = "REDIS_URL"
	envRedisStream  = "REDIS_STREAM"
	envCORSOrigins  = "CORS_ALLOWED_ORIGINS"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultDataDir     = "data"
	defaultGamesFile   = "table_tennis_games.csv"
	defaultStatsFile   = "table_tennis_player_stats.csv"
	defaultMetricsPort = "9090"
	defaultServiceName = "tabletennis-stats"
	defaultRedisStream = "tabletennis.games"
)

var defaultCORSOrigins = []string{"http://localhost:3000"}
