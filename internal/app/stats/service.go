package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/headtohead"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-stats/internal/events"
	"github.com/preston-bernstein/tabletennis-stats/internal/logging"
	"github.com/preston-bernstein/tabletennis-stats/internal/metrics"
	"github.com/preston-bernstein/tabletennis-stats/internal/records"
	"github.com/preston-bernstein/tabletennis-stats/internal/report"
)

// Store defines the in-memory state the service reads and commits to.
type Store interface {
	ListGames() []games.GameRecord
	ListStats() []players.PlayerStats
	GetStats(player string) (players.PlayerStats, bool)
	Snapshot() ([]games.GameRecord, []players.PlayerStats)
	Append(game games.GameRecord, updated ...players.PlayerStats)
}

// Persister rewrites both tables durably.
type Persister interface {
	Save(log []games.GameRecord, stats []players.PlayerStats) error
}

// Service owns the games log and player stats. It is the only writer.
type Service struct {
	// mu serializes ApplyGame across validate, persist and commit.
	mu        sync.Mutex
	store     Store
	persister Persister
	publisher events.Publisher
	recorder  *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service. publisher, recorder and logger may be nil.
func NewService(store Store, persister Persister, publisher events.Publisher, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		store:     store,
		persister: persister,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// ApplyGame validates in, folds it into both players' stats, persists both
// tables and only then commits to memory. Nothing changes on error.
func (s *Service) ApplyGame(ctx context.Context, in games.Input) (games.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := games.NewGameRecord(in, s.now())
	if err != nil {
		s.recorder.RecordGameApplied(string(in.GameType), err)
		logging.Warn(s.logger, "game rejected", logging.FieldError, err.Error())
		return games.GameRecord{}, err
	}

	p1 := s.statsOrNew(rec.Player1).Apply(rec, in.SeriesDecider)
	p2 := s.statsOrNew(rec.Player2).Apply(rec, in.SeriesDecider)

	nextGames := append(s.store.ListGames(), rec)
	nextStats := upsert(s.store.ListStats(), p1, p2)

	start := time.Now()
	err = s.persist(nextGames, nextStats)
	s.recorder.RecordPersist(time.Since(start), err)
	if err != nil {
		s.recorder.RecordGameApplied(string(rec.GameType), err)
		logging.Error(s.logger, "failed to persist game", err,
			logging.FieldPlayer1, rec.Player1,
			logging.FieldPlayer2, rec.Player2,
		)
		return games.GameRecord{}, err
	}

	s.store.Append(rec, p1, p2)
	s.recorder.RecordGameApplied(string(rec.GameType), nil)
	logging.Info(s.logger, "game recorded",
		logging.FieldPlayer1, rec.Player1,
		logging.FieldPlayer2, rec.Player2,
		logging.FieldWinner, rec.Winner,
		logging.FieldGameType, string(rec.GameType),
		logging.FieldCount, len(nextGames),
	)

	if err := s.publisher.PublishGameRecorded(ctx, rec); err != nil {
		logging.Warn(s.logger, "failed to publish game event", logging.FieldError, err.Error())
	}
	return rec, nil
}

func (s *Service) persist(log []games.GameRecord, stats []players.PlayerStats) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(log, stats); err != nil {
		if errors.Is(err, records.ErrPersistenceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", records.ErrPersistenceUnavailable, err)
	}
	return nil
}

// HeadToHead computes a's record against b for game type t from the full log.
func (s *Service) HeadToHead(a, b string, t games.GameType) headtohead.Record {
	return headtohead.Compute(s.store.ListGames(), a, b, t)
}

// PlayerReport renders the text summary for player from one consistent snapshot.
func (s *Service) PlayerReport(player string) (string, error) {
	log, all := s.store.Snapshot()

	var (
		st    players.PlayerStats
		found bool
	)
	opponents := make([]string, 0, len(all))
	for _, row := range all {
		if row.Player == player {
			st, found = row, true
		}
		opponents = append(opponents, row.Player)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", players.ErrPlayerNotFound, player)
	}

	return report.FormatPlayerReport(st, opponents, func(opponent string, t games.GameType) headtohead.Record {
		return headtohead.Compute(log, player, opponent, t)
	}), nil
}

// PlayerChart returns the chart series for player.
func (s *Service) PlayerChart(player string) (report.Chart, error) {
	st, err := s.Player(player)
	if err != nil {
		return report.Chart{}, err
	}
	return report.PlayerChart(st), nil
}

// Player returns the stats row for player.
func (s *Service) Player(player string) (players.PlayerStats, error) {
	st, ok := s.store.GetStats(player)
	if !ok {
		return players.PlayerStats{}, fmt.Errorf("%w: %s", players.ErrPlayerNotFound, player)
	}
	return st, nil
}

// Players returns every stats row in first-appearance order.
func (s *Service) Players() []players.PlayerStats {
	return s.store.ListStats()
}

// Games returns the full games log in insertion order.
func (s *Service) Games() []games.GameRecord {
	return s.store.ListGames()
}

func (s *Service) statsOrNew(player string) players.PlayerStats {
	if st, ok := s.store.GetStats(player); ok {
		return st
	}
	return players.New(player)
}

// upsert replaces rows in place and appends new players in argument order.
func upsert(rows []players.PlayerStats, updated ...players.PlayerStats) []players.PlayerStats {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[r.Player] = i
	}
	for _, u := range updated {
		if i, ok := index[u.Player]; ok {
			rows[i] = u
			continue
		}
		index[u.Player] = len(rows)
		rows = append(rows, u)
	}
	return rows
}
