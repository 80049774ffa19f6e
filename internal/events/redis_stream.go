package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
)

// StreamPublisher publishes committed games to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher wraps an existing client.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream}
}

// Dial parses redisURL, pings the server and returns a publisher for stream.
func Dial(ctx context.Context, redisURL, stream string) (*StreamPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewStreamPublisher(client, stream), nil
}

// Stream returns the target stream key.
func (p *StreamPublisher) Stream() string {
	return p.stream
}

// PublishGameRecorded appends game to the stream.
func (p *StreamPublisher) PublishGameRecorded(ctx context.Context, game games.GameRecord) error {
	return p.client.XAdd(ctx, streamArgs(p.stream, game)).Err()
}

// Close releases the underlying client.
func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

func streamArgs(stream string, game games.GameRecord) *redis.XAddArgs {
	data, err := json.Marshal(game)
	if err != nil {
		data = []byte("{}")
	}
	return &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"winner":    game.Winner,
			"game_type": string(game.GameType),
		},
	}
}
