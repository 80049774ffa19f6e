package games

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GameType splits every stat into two independent season buckets.
type GameType string

const (
	TypeRegular GameType = "Regular"
	TypePlayoff GameType = "Playoff"
)

// ErrInvalidGameRecord marks input rejected before any stats are touched.
var ErrInvalidGameRecord = errors.New("invalid game record")

// ParseGameType accepts the two persisted spellings exactly.
func ParseGameType(raw string) (GameType, error) {
	switch GameType(raw) {
	case TypeRegular, TypePlayoff:
		return GameType(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown game type %q", ErrInvalidGameRecord, raw)
	}
}

// Valid reports whether t is one of the known game types.
func (t GameType) Valid() bool {
	return t == TypeRegular || t == TypePlayoff
}

// Input is a single game result as submitted by a caller.
type Input struct {
	Player1       string   `json:"player1"`
	Player2       string   `json:"player2"`
	Score1        int      `json:"score1"`
	Score2        int      `json:"score2"`
	GameType      GameType `json:"gameType"`
	SeriesDecider bool     `json:"seriesDecider"`
}

// GameRecord is one row of the append-only games log.
type GameRecord struct {
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Timestamp time.Time `json:"date"`
	Score1    int       `json:"score1"`
	Score2    int       `json:"score2"`
	Winner    string    `json:"winner"`
	GameType  GameType  `json:"gameType"`
}

// NewGameRecord validates in and stamps it with playedAt.
// Ties are rejected rather than silently awarded to player 2.
func NewGameRecord(in Input, playedAt time.Time) (GameRecord, error) {
	if err := in.Validate(); err != nil {
		return GameRecord{}, err
	}
	return GameRecord{
		Player1:   in.Player1,
		Player2:   in.Player2,
		Timestamp: playedAt,
		Score1:    in.Score1,
		Score2:    in.Score2,
		Winner:    DeriveWinner(in.Player1, in.Player2, in.Score1, in.Score2),
		GameType:  in.GameType,
	}, nil
}

// Validate checks scores, names and game type.
func (in Input) Validate() error {
	if err := validateName("player1", in.Player1); err != nil {
		return err
	}
	if err := validateName("player2", in.Player2); err != nil {
		return err
	}
	if in.Player1 == in.Player2 {
		return fmt.Errorf("%w: %q cannot play against themselves", ErrInvalidGameRecord, in.Player1)
	}
	if in.Score1 < 0 || in.Score2 < 0 {
		return fmt.Errorf("%w: scores must be non-negative (got %d-%d)", ErrInvalidGameRecord, in.Score1, in.Score2)
	}
	if in.Score1 == in.Score2 {
		return fmt.Errorf("%w: tied score %d-%d has no winner", ErrInvalidGameRecord, in.Score1, in.Score2)
	}
	if !in.GameType.Valid() {
		return fmt.Errorf("%w: unknown game type %q", ErrInvalidGameRecord, in.GameType)
	}
	return nil
}

func validateName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidGameRecord, field)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %s has surrounding whitespace", ErrInvalidGameRecord, field)
	}
	return nil
}

// DeriveWinner returns player1 when score1 is strictly higher, otherwise player2.
func DeriveWinner(player1, player2 string, score1, score2 int) string {
	if score1 > score2 {
		return player1
	}
	return player2
}

// Involves reports whether player took part in the game.
func (g GameRecord) Involves(player string) bool {
	return g.Player1 == player || g.Player2 == player
}

// Between reports whether the game was played by exactly a and b, in either seat.
func (g GameRecord) Between(a, b string) bool {
	return (g.Player1 == a && g.Player2 == b) || (g.Player1 == b && g.Player2 == a)
}

// ScoresFor returns (scored, conceded) from player's side of the table.
// The second return is false when player did not play.
func (g GameRecord) ScoresFor(player string) (int, int, bool) {
	switch player {
	case g.Player1:
		return g.Score1, g.Score2, true
	case g.Player2:
		return g.Score2, g.Score1, true
	default:
		return 0, 0, false
	}
}
