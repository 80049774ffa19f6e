package config

// RecordsConfig locates the two CSV tables.
type RecordsConfig struct {
	DataDir   string
	GamesFile string
	StatsFile string
}

func loadRecords() RecordsConfig {
	return RecordsConfig{
		DataDir:   envOrDefault(envDataDir, defaultDataDir),
		GamesFile: envOrDefault(envGamesFile, defaultGamesFile),
		StatsFile: envOrDefault(envStatsFile, defaultStatsFile),
	}
}
