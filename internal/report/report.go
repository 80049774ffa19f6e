package report

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/headtohead"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
)

const trophy = "\U0001F3C6"

// NoStatsMessage is shown in place of a report for an unknown player.
const NoStatsMessage = "No stats available for this player."

// Lookup returns the head-to-head record of the report subject against opponent.
type Lookup func(opponent string, t games.GameType) headtohead.Record

// FormatPlayerReport renders st followed by one head-to-head section per opponent,
// in the order given. Opponents equal to st.Player are skipped.
func FormatPlayerReport(st players.PlayerStats, opponents []string, h2h Lookup) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s's Stats:\n", st.Player)
	fmt.Fprintf(&b, "Championships Won: %d %s\n\n", st.PlayoffSeriesWins, trophy)

	b.WriteString("Regular Season:\n")
	writeBucket(&b, st.Regular)
	b.WriteString("\n")

	b.WriteString("Playoffs:\n")
	writeBucket(&b, st.Playoff)
	fmt.Fprintf(&b, "  Playoff Series Wins: %d\n\n", st.PlayoffSeriesWins)

	b.WriteString("Head-to-Head:\n")
	for _, opponent := range opponents {
		if opponent == st.Player {
			continue
		}
		writeMatchup(&b, opponent, "Regular Season", h2h(opponent, games.TypeRegular))
		writeMatchup(&b, opponent, "Playoffs", h2h(opponent, games.TypePlayoff))
	}

	return b.String()
}

func writeBucket(b *strings.Builder, bucket players.Bucket) {
	fmt.Fprintf(b, "  Points Scored: %d\n", bucket.PointsScored)
	fmt.Fprintf(b, "  Points Conceded: %d\n", bucket.PointsConceded)
	fmt.Fprintf(b, "  Wins: %d\n", bucket.Wins)
	fmt.Fprintf(b, "  Losses: %d\n", bucket.Losses)
}

func writeMatchup(b *strings.Builder, opponent, label string, rec headtohead.Record) {
	fmt.Fprintf(b, "  vs %s (%s):\n", opponent, label)
	fmt.Fprintf(b, "    Points Scored: %d\n", rec.PointsScored)
	fmt.Fprintf(b, "    Points Conceded: %d\n", rec.PointsConceded)
	fmt.Fprintf(b, "    Wins: %d\n", rec.Wins)
	fmt.Fprintf(b, "    Losses: %d\n", rec.Losses)
	fmt.Fprintf(b, "    Win Rate: %.2f\n\n", rec.WinRate())
}
