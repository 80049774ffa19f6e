package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-stats/internal/timeutil"
)

// ErrPersistenceUnavailable wraps failures writing either table to disk.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// Tables is the full persisted state.
type Tables struct {
	Games []games.GameRecord
	Stats []players.PlayerStats
	// Migrated is set when the stats table lacked the Playoff Wins column.
	Migrated bool
}

// CSVStore loads and rewrites the games and player stats tables as CSV files.
type CSVStore struct {
	paths Paths

	mu sync.Mutex
	// Unknown stats columns survive a load/save cycle.
	extraCols []string
	extraVals map[string][]string
}

// NewCSVStore constructs a store for the given file locations.
func NewCSVStore(paths Paths) *CSVStore {
	return &CSVStore{
		paths:     paths,
		extraVals: make(map[string][]string),
	}
}

// Paths exposes the file locations (primarily for testing).
func (s *CSVStore) Paths() Paths {
	if s == nil {
		return Paths{}
	}
	return s.paths
}

// Load reads both tables. A missing file yields an empty table.
func (s *CSVStore) Load() (Tables, error) {
	if s == nil {
		return Tables{}, errors.New("record store not configured")
	}

	var out Tables

	gameRows, gameCols, err := readTable(s.paths.Games)
	if err != nil {
		return Tables{}, err
	}
	if gameRows != nil {
		out.Games, err = decodeGames(s.paths.Games, gameCols, gameRows)
		if err != nil {
			return Tables{}, err
		}
	}

	statRows, statCols, err := readTable(s.paths.Stats)
	if err != nil {
		return Tables{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extraCols = nil
	s.extraVals = make(map[string][]string)

	if statCols != nil {
		h := newHeader(statCols)
		out.Migrated = !h.has(colPlayoffWins)
		out.Stats, err = decodeStats(s.paths.Stats, h, statRows)
		if err != nil {
			return Tables{}, err
		}
		s.extraCols = extras(statCols, StatsColumns)
		for _, row := range statRows {
			if len(s.extraCols) == 0 {
				break
			}
			vals := make([]string, len(s.extraCols))
			for i, c := range s.extraCols {
				vals[i] = h.cell(row, c)
			}
			s.extraVals[h.cell(row, colPlayer)] = vals
		}
	}
	return out, nil
}

// Save rewrites both tables in full. Both files are staged before either is
// renamed into place, and a failed rename rolls back the other, so any error
// leaves the previous files intact.
func (s *CSVStore) Save(log []games.GameRecord, stats []players.PlayerStats) error {
	if s == nil {
		return fmt.Errorf("%w: record store not configured", ErrPersistenceUnavailable)
	}

	gamesData, err := encodeGames(log)
	if err != nil {
		return fmt.Errorf("%w: encode games: %v", ErrPersistenceUnavailable, err)
	}

	s.mu.Lock()
	statsData, err := encodeStats(stats, s.extraCols, s.extraVals)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: encode stats: %v", ErrPersistenceUnavailable, err)
	}

	if err := writeAll(
		staged{target: s.paths.Games, data: gamesData},
		staged{target: s.paths.Stats, data: statsData},
	); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// readTable returns nil rows and columns when the file does not exist.
func readTable(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	cols, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s header: %w", path, err)
	}
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], "\ufeff")
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, cols, nil
}

func decodeGames(path string, cols []string, rows [][]string) ([]games.GameRecord, error) {
	h := newHeader(cols)
	required := []string{colPlayer1, colPlayer2, colDate, colScore1, colScore2, colGameType}
	if missing := h.missing(required); len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing columns %s", path, strings.Join(missing, ", "))
	}

	out := make([]games.GameRecord, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		g := games.GameRecord{
			Player1: h.cell(row, colPlayer1),
			Player2: h.cell(row, colPlayer2),
			Winner:  h.cell(row, colWinner),
		}

		ts, err := timeutil.ParseTimestamp(h.cell(row, colDate))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		g.Timestamp = ts

		if g.Score1, err = parseCount(h.cell(row, colScore1), false); err != nil {
			return nil, fmt.Errorf("%s line %d: %s: %w", path, line, colScore1, err)
		}
		if g.Score2, err = parseCount(h.cell(row, colScore2), false); err != nil {
			return nil, fmt.Errorf("%s line %d: %s: %w", path, line, colScore2, err)
		}
		if g.GameType, err = games.ParseGameType(h.cell(row, colGameType)); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if g.Winner == "" {
			g.Winner = games.DeriveWinner(g.Player1, g.Player2, g.Score1, g.Score2)
		}
		out = append(out, g)
	}
	return out, nil
}

func decodeStats(path string, h header, rows [][]string) ([]players.PlayerStats, error) {
	if !h.has(colPlayer) {
		return nil, fmt.Errorf("%s: missing columns %s", path, colPlayer)
	}

	out := make([]players.PlayerStats, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		st := players.New(h.cell(row, colPlayer))
		fields := []struct {
			col string
			dst *int
		}{
			{colPointsScoredRegular, &st.Regular.PointsScored},
			{colPointsConcededRegular, &st.Regular.PointsConceded},
			{colWinsRegular, &st.Regular.Wins},
			{colLossesRegular, &st.Regular.Losses},
			{colPointsScoredPlayoff, &st.Playoff.PointsScored},
			{colPointsConcededPlayoff, &st.Playoff.PointsConceded},
			{colWinsPlayoff, &st.Playoff.Wins},
			{colLossesPlayoff, &st.Playoff.Losses},
			{colPlayoffWins, &st.PlayoffSeriesWins},
		}
		for _, f := range fields {
			v, err := parseCount(h.cell(row, f.col), true)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %s: %w", path, line, f.col, err)
			}
			*f.dst = v
		}
		out = append(out, st)
	}
	return out, nil
}

// parseCount accepts plain ints and integral floats such as "11.0".
func parseCount(raw string, allowEmpty bool) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if allowEmpty {
			return 0, nil
		}
		return 0, errors.New("empty value")
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return checkCount(v)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return checkCount(int(f))
}

func checkCount(v int) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}

func encodeGames(log []games.GameRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(GamesColumns); err != nil {
		return nil, err
	}
	for _, g := range log {
		row := []string{
			g.Player1,
			g.Player2,
			timeutil.FormatTimestamp(g.Timestamp),
			strconv.Itoa(g.Score1),
			strconv.Itoa(g.Score2),
			g.Winner,
			string(g.GameType),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeStats(stats []players.PlayerStats, extraCols []string, extraVals map[string][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	cols := append(append([]string{}, StatsColumns...), extraCols...)
	if err := w.Write(cols); err != nil {
		return nil, err
	}
	for _, st := range stats {
		row := []string{
			st.Player,
			strconv.Itoa(st.Regular.PointsScored),
			strconv.Itoa(st.Regular.PointsConceded),
			strconv.Itoa(st.Regular.Wins),
			strconv.Itoa(st.Regular.Losses),
			strconv.Itoa(st.Playoff.PointsScored),
			strconv.Itoa(st.Playoff.PointsConceded),
			strconv.Itoa(st.Playoff.Wins),
			strconv.Itoa(st.Playoff.Losses),
			strconv.Itoa(st.PlayoffSeriesWins),
		}
		if len(extraCols) > 0 {
			vals := extraVals[st.Player]
			for i := range extraCols {
				if i < len(vals) {
					row = append(row, vals[i])
				} else {
					row = append(row, "")
				}
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
