package engine

import (
	"context"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Observer is notified with a fresh snapshot after every handled event.
type Observer interface {
	Observe(ctx context.Context, snapshot entity.Snapshot) error
}

type Option func(*Engine)

// WithPollInterval re-fetches room info every interval while the channel is open. Zero disables it.
func WithPollInterval(interval time.Duration) Option {
	return func(that *Engine) {
		that.pollInterval = interval
	}
}

func WithObserver(observer Observer) Option {
	return func(that *Engine) {
		that.observers = append(that.observers, observer)
	}
}
