package records

// Column names and order are the on-disk compatibility contract.
const (
	colPlayer1  = "Player 1"
	colPlayer2  = "Player 2"
	colDate     = "Date"
	colScore1   = "Score Player 1"
	colScore2   = "Score Player 2"
	colWinner   = "Winner"
	colGameType = "Game Type"

	colPlayer                = "Player"
	colPointsScoredRegular   = "Points Scored (Regular)"
	colPointsConcededRegular = "Points Conceded (Regular)"
	colWinsRegular           = "Wins (Regular)"
	colLossesRegular         = "Losses (Regular)"
	colPointsScoredPlayoff   = "Points Scored (Playoff)"
	colPointsConcededPlayoff = "Points Conceded (Playoff)"
	colWinsPlayoff           = "Wins (Playoff)"
	colLossesPlayoff         = "Losses (Playoff)"
	colPlayoffWins           = "Playoff Wins"
)

// GamesColumns is the header of the games table.
var GamesColumns = []string{
	colPlayer1, colPlayer2, colDate, colScore1, colScore2, colWinner, colGameType,
}

// StatsColumns is the header of the player stats table.
var StatsColumns = []string{
	colPlayer,
	colPointsScoredRegular, colPointsConcededRegular, colWinsRegular, colLossesRegular,
	colPointsScoredPlayoff, colPointsConcededPlayoff, colWinsPlayoff, colLossesPlayoff,
	colPlayoffWins,
}

// header maps column name to index for one loaded table.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		if _, dup := h[c]; !dup {
			h[c] = i
		}
	}
	return h
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

func (h header) missing(required []string) []string {
	var out []string
	for _, c := range required {
		if !h.has(c) {
			out = append(out, c)
		}
	}
	return out
}

// cell returns the value for col in row, or "" when the column or cell is absent.
func (h header) cell(row []string, col string) string {
	idx, ok := h[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// extras lists columns that are not part of known, in file order.
func extras(cols []string, known []string) []string {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	var out []string
	for _, c := range cols {
		if _, ok := knownSet[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
