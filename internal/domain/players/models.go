package players

import (
	"errors"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
)

// ErrPlayerNotFound is returned when no stats row exists for a player.
var ErrPlayerNotFound = errors.New("player not found")

// Bucket holds the cumulative numbers for one season type.
type Bucket struct {
	PointsScored   int `json:"pointsScored"`
	PointsConceded int `json:"pointsConceded"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
}

// Games returns how many games the bucket has counted.
func (b Bucket) Games() int {
	return b.Wins + b.Losses
}

// PlayerStats is the cumulative row kept per distinct player name.
type PlayerStats struct {
	Player            string `json:"player"`
	Regular           Bucket `json:"regular"`
	Playoff           Bucket `json:"playoff"`
	PlayoffSeriesWins int    `json:"playoffSeriesWins"`
}

// New returns an all-zero stats row for player.
func New(player string) PlayerStats {
	return PlayerStats{Player: player}
}

// Bucket returns the bucket that games of type t accumulate into.
func (s *PlayerStats) Bucket(t games.GameType) *Bucket {
	if t == games.TypePlayoff {
		return &s.Playoff
	}
	return &s.Regular
}

// Apply returns s with game g folded in from s.Player's side.
// seriesDecider only counts for a playoff win. Apply is a no-op when s.Player
// did not play in g.
func (s PlayerStats) Apply(g games.GameRecord, seriesDecider bool) PlayerStats {
	scored, conceded, ok := g.ScoresFor(s.Player)
	if !ok {
		return s
	}

	b := s.Bucket(g.GameType)
	b.PointsScored += scored
	b.PointsConceded += conceded

	won := g.Winner == s.Player
	if won {
		b.Wins++
	} else {
		b.Losses++
	}
	if won && seriesDecider && g.GameType == games.TypePlayoff {
		s.PlayoffSeriesWins++
	}
	return s
}
