package stats

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/headtohead"
	"github.com/preston-bernstein/tabletennis-stats/internal/domain/players"
	"github.com/preston-bernstein/tabletennis-stats/internal/metrics"
	"github.com/preston-bernstein/tabletennis-stats/internal/records"
	"github.com/preston-bernstein/tabletennis-stats/internal/store"
	"github.com/preston-bernstein/tabletennis-stats/internal/testutil"
)

type stubPersister struct {
	err      error
	calls    int
	lastLog  []games.GameRecord
	lastRows []players.PlayerStats
}

func (p *stubPersister) Save(log []games.GameRecord, stats []players.PlayerStats) error {
	p.calls++
	p.lastLog = log
	p.lastRows = stats
	return p.err
}

type stubPublisher struct {
	err       error
	published []games.GameRecord
}

func (p *stubPublisher) PublishGameRecorded(_ context.Context, g games.GameRecord) error {
	p.published = append(p.published, g)
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

func newTestService(p Persister) (*Service, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	svc := NewService(ms, p, nil, nil, nil)
	svc.now = testutil.NowAt(time.Date(2024, 1, 2, 19, 30, 0, 0, time.Local))
	return svc, ms
}

func mustApply(t *testing.T, svc *Service, in games.Input) games.GameRecord {
	t.Helper()
	rec, err := svc.ApplyGame(context.Background(), in)
	if err != nil {
		t.Fatalf("apply %+v failed: %v", in, err)
	}
	return rec
}

func TestApplyRegularGameScenario(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})

	rec := mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))
	if rec.Winner != "Alice" {
		t.Fatalf("expected Alice to win, got %s", rec.Winner)
	}

	alice, err := svc.Player("Alice")
	if err != nil {
		t.Fatalf("expected Alice stats: %v", err)
	}
	if alice.Regular != (players.Bucket{PointsScored: 11, PointsConceded: 5, Wins: 1}) {
		t.Fatalf("unexpected Alice stats %+v", alice.Regular)
	}
	bob, _ := svc.Player("Bob")
	if bob.Regular != (players.Bucket{PointsScored: 5, PointsConceded: 11, Losses: 1}) {
		t.Fatalf("unexpected Bob stats %+v", bob.Regular)
	}
}

func TestApplyPlayoffSeriesDeciderScenario(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})

	mustApply(t, svc, testutil.PlayoffGame("Alice", "Bob", 11, 9, true))

	got := svc.HeadToHead("Alice", "Bob", games.TypePlayoff)
	want := headtohead.Record{PointsScored: 11, PointsConceded: 9, Wins: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	alice, _ := svc.Player("Alice")
	if alice.PlayoffSeriesWins != 1 {
		t.Fatalf("expected 1 series win, got %d", alice.PlayoffSeriesWins)
	}
	bob, _ := svc.Player("Bob")
	if bob.PlayoffSeriesWins != 0 {
		t.Fatalf("expected loser to have no series win, got %d", bob.PlayoffSeriesWins)
	}
}

func TestHeadToHeadWithoutGamesIsZero(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))

	got := svc.HeadToHead("Alice", "Carol", games.TypeRegular)
	if got != (headtohead.Record{}) || got.WinRate() != 0 {
		t.Fatalf("expected zero record, got %+v", got)
	}
}

func TestHeadToHeadIsIdempotent(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))
	mustApply(t, svc, testutil.RegularGame("Bob", "Alice", 11, 7))

	first := svc.HeadToHead("Alice", "Bob", games.TypeRegular)
	second := svc.HeadToHead("Alice", "Bob", games.TypeRegular)
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestApplyIsAdditive(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))
	mustApply(t, svc, testutil.RegularGame("Bob", "Alice", 11, 7))

	alice, _ := svc.Player("Alice")
	want := players.Bucket{PointsScored: 18, PointsConceded: 16, Wins: 1, Losses: 1}
	if alice.Regular != want {
		t.Fatalf("expected %+v, got %+v", want, alice.Regular)
	}
}

func TestWinsPlusLossesMatchesGamesPlayed(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	inputs := []games.Input{
		testutil.RegularGame("Alice", "Bob", 11, 5),
		testutil.RegularGame("Carol", "Alice", 11, 3),
		testutil.PlayoffGame("Alice", "Carol", 11, 9, false),
		testutil.RegularGame("Bob", "Carol", 12, 10),
		testutil.PlayoffGame("Bob", "Alice", 11, 6, true),
		testutil.RegularGame("Alice", "Bob", 13, 11),
	}
	for _, in := range inputs {
		mustApply(t, svc, in)
	}

	log := svc.Games()
	for _, st := range svc.Players() {
		var regular, playoff int
		for _, g := range log {
			if !g.Involves(st.Player) {
				continue
			}
			if g.GameType == games.TypeRegular {
				regular++
			} else {
				playoff++
			}
		}
		if st.Regular.Games() != regular {
			t.Fatalf("%s: regular wins+losses %d, games %d", st.Player, st.Regular.Games(), regular)
		}
		if st.Playoff.Games() != playoff {
			t.Fatalf("%s: playoff wins+losses %d, games %d", st.Player, st.Playoff.Games(), playoff)
		}
		if st.PlayoffSeriesWins > st.Playoff.Wins {
			t.Fatalf("%s: series wins %d exceed playoff wins %d", st.Player, st.PlayoffSeriesWins, st.Playoff.Wins)
		}
	}
}

func TestApplyRejectsInvalidInputWithoutMutation(t *testing.T) {
	persister := &stubPersister{}
	svc, ms := newTestService(persister)
	rec := metrics.NewRecorder()
	svc.recorder = rec

	cases := []games.Input{
		testutil.RegularGame("Alice", "Bob", 9, 9),
		testutil.RegularGame("Alice", "Bob", -1, 11),
		{Player1: "Alice", Player2: "Bob", Score1: 11, Score2: 3, GameType: "Friendly"},
	}
	for _, in := range cases {
		if _, err := svc.ApplyGame(context.Background(), in); !errors.Is(err, games.ErrInvalidGameRecord) {
			t.Fatalf("expected ErrInvalidGameRecord for %+v, got %v", in, err)
		}
	}

	if persister.calls != 0 {
		t.Fatalf("expected no persistence for rejected games, got %d calls", persister.calls)
	}
	if len(ms.ListGames()) != 0 || len(ms.ListStats()) != 0 {
		t.Fatalf("expected store untouched")
	}
	if rec.GamesRejected() != len(cases) {
		t.Fatalf("expected %d rejections recorded, got %d", len(cases), rec.GamesRejected())
	}
}

func TestApplyPersistFailureLeavesStateUntouched(t *testing.T) {
	persister := &stubPersister{}
	svc, ms := newTestService(persister)
	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))

	persister.err = errors.New("disk full")
	_, err := svc.ApplyGame(context.Background(), testutil.RegularGame("Alice", "Carol", 11, 2))
	if !errors.Is(err, records.ErrPersistenceUnavailable) {
		t.Fatalf("expected ErrPersistenceUnavailable, got %v", err)
	}

	if got := len(ms.ListGames()); got != 1 {
		t.Fatalf("expected 1 committed game, got %d", got)
	}
	if _, ok := ms.GetStats("Carol"); ok {
		t.Fatalf("expected Carol not to be created")
	}
	alice, _ := ms.GetStats("Alice")
	if alice.Regular.Wins != 1 {
		t.Fatalf("expected Alice unchanged, got %+v", alice.Regular)
	}
}

func TestApplyPersistsFullTables(t *testing.T) {
	persister := &stubPersister{}
	svc, _ := newTestService(persister)
	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))
	mustApply(t, svc, testutil.RegularGame("Carol", "Alice", 11, 5))

	if persister.calls != 2 {
		t.Fatalf("expected 2 saves, got %d", persister.calls)
	}
	if len(persister.lastLog) != 2 {
		t.Fatalf("expected full games log to be saved, got %d rows", len(persister.lastLog))
	}
	names := make([]string, 0, len(persister.lastRows))
	for _, r := range persister.lastRows {
		names = append(names, r.Player)
	}
	if strings.Join(names, ",") != "Alice,Bob,Carol" {
		t.Fatalf("expected first-appearance order, got %v", names)
	}
}

func TestApplyPublishesAfterCommit(t *testing.T) {
	pub := &stubPublisher{err: errors.New("redis down")}
	ms := store.NewMemoryStore()
	svc := NewService(ms, &stubPersister{}, pub, nil, nil)

	if _, err := svc.ApplyGame(context.Background(), testutil.RegularGame("Alice", "Bob", 11, 5)); err != nil {
		t.Fatalf("expected publish failure to be non-fatal, got %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].Winner != "Alice" {
		t.Fatalf("expected one published game, got %+v", pub.published)
	}
	if len(ms.ListGames()) != 1 {
		t.Fatalf("expected game committed despite publish failure")
	}
}

func TestRoundTripThroughCSVStore(t *testing.T) {
	csvStore := records.NewCSVStore(records.PathsIn(t.TempDir(), "", ""))
	svc, ms := newTestService(csvStore)

	mustApply(t, svc, testutil.RegularGame("Alice", "Bob", 11, 5))
	mustApply(t, svc, testutil.PlayoffGame("Bob", "Alice", 11, 9, true))

	tables, err := records.NewCSVStore(csvStore.Paths()).Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	wantStats := ms.ListStats()
	if len(tables.Stats) != len(wantStats) {
		t.Fatalf("expected %d stats rows, got %d", len(wantStats), len(tables.Stats))
	}
	for i := range wantStats {
		if tables.Stats[i] != wantStats[i] {
			t.Fatalf("stats row %d mismatch: got %+v want %+v", i, tables.Stats[i], wantStats[i])
		}
	}

	wantGames := ms.ListGames()
	if len(tables.Games) != len(wantGames) {
		t.Fatalf("expected %d games, got %d", len(wantGames), len(tables.Games))
	}
	for i := range wantGames {
		got, want := tables.Games[i], wantGames[i]
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Fatalf("game %d timestamp mismatch", i)
		}
		got.Timestamp, want.Timestamp = time.Time{}, time.Time{}
		if got != want {
			t.Fatalf("game %d mismatch: got %+v want %+v", i, got, want)
		}
	}
}

func TestPlayerReportUnknownPlayer(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	if _, err := svc.PlayerReport("Nobody"); !errors.Is(err, players.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := svc.PlayerChart("Nobody"); !errors.Is(err, players.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound for chart, got %v", err)
	}
}

func TestPlayerReportListsOpponentsInFirstAppearanceOrder(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})
	mustApply(t, svc, testutil.RegularGame("Zed", "Mia", 11, 5))
	mustApply(t, svc, testutil.RegularGame("Amy", "Mia", 11, 8))

	got, err := svc.PlayerReport("Mia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Mia's Stats:\n") {
		t.Fatalf("unexpected report header:\n%s", got)
	}
	zed := strings.Index(got, "  vs Zed (Regular Season):\n    Points Scored: 5\n    Points Conceded: 11\n    Wins: 0\n    Losses: 1\n    Win Rate: 0.00\n")
	amy := strings.Index(got, "  vs Amy (Regular Season):\n    Points Scored: 8\n")
	if zed < 0 || amy < 0 || zed > amy {
		t.Fatalf("expected Zed block before Amy block, got:\n%s", got)
	}
}

func TestConcurrentApplyKeepsTotalsConsistent(t *testing.T) {
	svc, _ := newTestService(&stubPersister{})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = svc.ApplyGame(context.Background(), testutil.RegularGame("Alice", "Bob", 11, 3))
				return
			}
			_, _ = svc.ApplyGame(context.Background(), testutil.RegularGame("Bob", "Alice", 11, 4))
		}(i)
	}
	wg.Wait()

	if got := len(svc.Games()); got != n {
		t.Fatalf("expected %d games, got %d", n, got)
	}
	alice, _ := svc.Player("Alice")
	bob, _ := svc.Player("Bob")
	if alice.Regular.Wins != n/2 || bob.Regular.Wins != n/2 {
		t.Fatalf("unexpected wins alice=%d bob=%d", alice.Regular.Wins, bob.Regular.Wins)
	}
	if alice.Regular.PointsScored != bob.Regular.PointsConceded {
		t.Fatalf("points must mirror: %d vs %d", alice.Regular.PointsScored, bob.Regular.PointsConceded)
	}
}

// snapshotOnlyStore fails the test if reads bypass Snapshot.
type snapshotOnlyStore struct {
	*store.MemoryStore
	t *testing.T
}

func (s snapshotOnlyStore) ListGames() []games.GameRecord {
	s.t.Fatalf("report must read games through Snapshot")
	return nil
}

func (s snapshotOnlyStore) ListStats() []players.PlayerStats {
	s.t.Fatalf("report must read stats through Snapshot")
	return nil
}

func (s snapshotOnlyStore) GetStats(string) (players.PlayerStats, bool) {
	s.t.Fatalf("report must read stats through Snapshot")
	return players.PlayerStats{}, false
}

func TestPlayerReportReadsOneSnapshot(t *testing.T) {
	seed, ms := newTestService(&stubPersister{})
	mustApply(t, seed, testutil.RegularGame("Alice", "Bob", 11, 5))

	svc := NewService(snapshotOnlyStore{MemoryStore: ms, t: t}, nil, nil, nil, nil)
	got, err := svc.PlayerReport("Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "vs Bob (Regular Season):\n    Points Scored: 11\n") {
		t.Fatalf("unexpected report:\n%s", got)
	}
	if _, err := svc.PlayerReport("Nobody"); !errors.Is(err, players.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}
