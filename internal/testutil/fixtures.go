package testutil

import "github.com/preston-bernstein/tabletennis-stats/internal/domain/games"

// RegularGame builds a regular-season game input.
func RegularGame(p1, p2 string, s1, s2 int) games.Input {
	return games.Input{Player1: p1, Player2: p2, Score1: s1, Score2: s2, GameType: games.TypeRegular}
}

// PlayoffGame builds a playoff game input, optionally flagged as series decider.
func PlayoffGame(p1, p2 string, s1, s2 int, decider bool) games.Input {
	return games.Input{Player1: p1, Player2: p2, Score1: s1, Score2: s2, GameType: games.TypePlayoff, SeriesDecider: decider}
}
