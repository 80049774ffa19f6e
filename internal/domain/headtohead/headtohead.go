package headtohead

import "github.com/preston-bernstein/tabletennis-stats/internal/domain/games"

// Record is the head-to-head line for one player against one opponent.
type Record struct {
	PointsScored   int `json:"pointsScored"`
	PointsConceded int `json:"pointsConceded"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
}

// WinRate is wins/(wins+losses), or 0 with no games.
func (r Record) WinRate() float64 {
	total := r.Wins + r.Losses
	if total == 0 {
		return 0
	}
	return float64(r.Wins) / float64(total)
}

// Compute folds every game of type t between a and b, from a's side.
// It always walks the full log; nothing is cached.
func Compute(log []games.GameRecord, a, b string, t games.GameType) Record {
	var out Record
	for _, g := range log {
		if g.GameType != t || !g.Between(a, b) {
			continue
		}
		scored, conceded, _ := g.ScoresFor(a)
		out.PointsScored += scored
		out.PointsConceded += conceded
		switch g.Winner {
		case a:
			out.Wins++
		case b:
			out.Losses++
		}
	}
	return out
}
