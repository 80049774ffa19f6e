package records

import "path/filepath"

const (
	DefaultGamesFile = "table_tennis_games.csv"
	DefaultStatsFile = "table_tennis_player_stats.csv"
)

// Paths locates the two tables on disk.
type Paths struct {
	Games string
	Stats string
}

// PathsIn builds Paths for files under dir, falling back to the default file names.
func PathsIn(dir, gamesFile, statsFile string) Paths {
	if gamesFile == "" {
		gamesFile = DefaultGamesFile
	}
	if statsFile == "" {
		statsFile = DefaultStatsFile
	}
	return Paths{
		Games: filepath.Join(dir, gamesFile),
		Stats: filepath.Join(dir, statsFile),
	}
}
