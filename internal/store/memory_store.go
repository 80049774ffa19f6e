package store

import (
	"sync"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
)

// MemoryStore keeps a thread-safe snapshot of the games log and player stats.
// Players are enumerated in order of first appearance.
type MemoryStore struct {
	mu    sync.RWMutex
	games []games.GameRecord
	stats map[string]players.PlayerStats
	order []string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stats: make(map[string]players.PlayerStats),
	}
}

// ListGames returns a copy of the games log in insertion order.
func (s *MemoryStore) ListGames() []games.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamesLocked()
}

// ListStats returns a copy of every stats row in first-appearance order.
func (s *MemoryStore) ListStats() []players.PlayerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

// Snapshot returns copies of the games log and stats rows taken under one lock,
// so both reflect the same committed state.
func (s *MemoryStore) Snapshot() ([]games.GameRecord, []players.PlayerStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gamesLocked(), s.statsLocked()
}

func (s *MemoryStore) gamesLocked() []games.GameRecord {
	result := make([]games.GameRecord, len(s.games))
	copy(result, s.games)
	return result
}

func (s *MemoryStore) statsLocked() []players.PlayerStats {
	result := make([]players.PlayerStats, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.stats[name])
	}
	return result
}

// GetStats retrieves the stats row for player.
func (s *MemoryStore) GetStats(player string) (players.PlayerStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stats[player]
	return st, ok
}

// Append adds game to the log and upserts the given stats rows.
// New players are appended to the enumeration order.
func (s *MemoryStore) Append(game games.GameRecord, updated ...players.PlayerStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = append(s.games, game)
	for _, st := range updated {
		s.upsertLocked(st)
	}
}

// Replace swaps the whole state for a freshly loaded snapshot.
func (s *MemoryStore) Replace(log []games.GameRecord, stats []players.PlayerStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make([]games.GameRecord, len(log))
	copy(s.games, log)
	s.stats = make(map[string]players.PlayerStats, len(stats))
	s.order = make([]string, 0, len(stats))
	for _, st := range stats {
		s.upsertLocked(st)
	}
}

func (s *MemoryStore) upsertLocked(st players.PlayerStats) {
	if _, ok := s.stats[st.Player]; !ok {
		s.order = append(s.order, st.Player)
	}
	s.stats[st.Player] = st
}
