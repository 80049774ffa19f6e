package metrics

import (
	"sync"
	"time"
)

type engineStats struct {
	applied            map[string]int
	rejected           int
	persistErrors      int
	lastPersistLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about the stats engine.
// When OpenTelemetry is set up the same events are forwarded to its instruments.
type Recorder struct {
	mu    sync.Mutex
	stats engineStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: engineStats{applied: make(map[string]int)},
		otel:  otel,
	}
}

// RecordGameApplied counts an add-game attempt. A non-nil err counts as a rejection.
func (r *Recorder) RecordGameApplied(gameType string, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if err != nil {
		r.stats.rejected++
	} else {
		r.stats.applied[gameType]++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordGameApplied(gameType, err)
	}
}

// RecordPersist tracks a whole-table rewrite and its latency.
func (r *Recorder) RecordPersist(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.stats.lastPersistLatency = duration
	if err != nil {
		r.stats.persistErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPersist(duration, err)
	}
}

// GamesApplied returns the number of games committed for a game type.
func (r *Recorder) GamesApplied(gameType string) int {
	return r.Snapshot().Applied[gameType]
}

// GamesRejected returns the number of add-game attempts that failed.
func (r *Recorder) GamesRejected() int {
	return r.Snapshot().Rejected
}

// PersistErrors returns the number of failed table writes.
func (r *Recorder) PersistErrors() int {
	return r.Snapshot().PersistErrors
}

// Snapshot is a copy of the current engine counters.
type Snapshot struct {
	Applied            map[string]int
	Rejected           int
	PersistErrors      int
	LastPersistLatency time.Duration
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	applied := make(map[string]int, len(r.stats.applied))
	for k, v := range r.stats.applied {
		applied[k] = v
	}
	return Snapshot{
		Applied:            applied,
		Rejected:           r.stats.rejected,
		PersistErrors:      r.stats.persistErrors,
		LastPersistLatency: r.stats.lastPersistLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}
