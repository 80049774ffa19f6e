package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/tabletennis-stats/internal/domain/games"
	"github.com/preston-bernstein/tabletennis-stats/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// retryingPublisher wraps a Publisher with retry/backoff behavior.
type retryingPublisher struct {
	inner       Publisher
	logger      *slog.Logger
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetryingPublisher wraps the given publisher with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingPublisher(inner Publisher, logger *slog.Logger, maxAttempts int, backoff time.Duration) Publisher {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &retryingPublisher{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *retryingPublisher) PublishGameRecorded(ctx context.Context, game games.GameRecord) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.inner.PublishGameRecorded(ctx, game)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		r.logWarn(ctx, "publish retry", "attempt", attempt, "max_attempts", r.maxAttempts, logging.FieldError, err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoffFn(attempt)):
		}
	}

	return lastErr
}

func (r *retryingPublisher) Close() error {
	return r.inner.Close()
}

func (r *retryingPublisher) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, r.logger), msg, args...)
}
