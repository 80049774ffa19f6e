package events

import (
	"context"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
)

// DefaultStream is the Redis stream committed games are published to.
const DefaultStream = "tabletennis.games"

// Publisher announces games after they are committed.
type Publisher interface {
	PublishGameRecorded(ctx context.Context, game games.GameRecord) error
	Close() error
}

// Noop drops every event; used when no broker is configured.
type Noop struct{}

func (Noop) PublishGameRecorded(context.Context, games.GameRecord) error { return nil }
func (Noop) Close() error                                              { return nil }
