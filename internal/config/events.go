package config

// EventsConfig controls publishing of recorded games. An empty RedisURL disables it.
type EventsConfig struct {
	RedisURL string
	Stream   string
}

// Enabled reports whether a broker is configured.
func (c EventsConfig) Enabled() bool {
	return c.RedisURL != ""
}

func loadEvents() EventsConfig {
	return EventsConfig{
		RedisURL: envOrDefault(envRedisURL, ""),
		Stream:   envOrDefault(envRedisStream, defaultRedisStream),
	}
}
