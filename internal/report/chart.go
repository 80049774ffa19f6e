package report

import "github.com/preston-bernstein/tabletennis-stats/internal/domain/players"

// Bar is one labelled value of a chart series.
type Bar struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Series is one titled bar chart.
type Series struct {
	Title string `json:"title"`
	Bars  []Bar  `json:"bars"`
}

// Chart holds the data behind a player's points and win/loss bar charts.
type Chart struct {
	Player string   `json:"player"`
	Series []Series `json:"series"`
}

// PlayerChart returns the points and win/loss series for st.
func PlayerChart(st players.PlayerStats) Chart {
	return Chart{
		Player: st.Player,
		Series: []Series{
			{
				Title: "Points Scored vs Conceded for " + st.Player,
				Bars: []Bar{
					{Label: "Points Scored (Regular)", Value: st.Regular.PointsScored, Color: "blue"},
					{Label: "Points Scored (Playoff)", Value: st.Playoff.PointsScored, Color: "blue"},
					{Label: "Points Conceded (Regular)", Value: st.Regular.PointsConceded, Color: "red"},
					{Label: "Points Conceded (Playoff)", Value: st.Playoff.PointsConceded, Color: "red"},
				},
			},
			{
				Title: "Win/Loss Ratio for " + st.Player,
				Bars: []Bar{
					{Label: "Wins (Regular)", Value: st.Regular.Wins, Color: "green"},
					{Label: "Losses (Regular)", Value: st.Regular.Losses, Color: "red"},
					{Label: "Wins (Playoff)", Value: st.Playoff.Wins, Color: "green"},
					{Label: "Losses (Playoff)", Value: st.Playoff.Losses, Color: "red"},
				},
			},
		},
	}
}
