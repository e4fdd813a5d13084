package roominfo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type roomGetter interface {
	GetRoom(ctx context.Context, roomID uint64) (*entity.RoomInfo, error)
}

// Token identifies one issued fetch. A token stops being current as soon as a newer
// fetch is issued or the fetcher is cancelled.
type Token uint64

// Result is a successful fetch, handed to the deliver callback.
type Result struct {
	Token  Token
	RoomID uint64
	Info   *entity.RoomInfo
}

// Fetcher keeps at most one room-info request in flight. Issuing a fetch cancels the
// previous one; results of cancelled fetches are never delivered.
type Fetcher struct {
	logger *slog.Logger
	client roomGetter

	mu      sync.Mutex
	current Token
	cancel  context.CancelFunc

	wg sync.WaitGroup
}

func NewFetcher(logger *slog.Logger, client roomGetter) *Fetcher {
	return &Fetcher{
		logger: logger.With("component", "roominfo.fetcher"),
		client: client,
	}
}

// Fetch supersedes any pending fetch and starts a new one. deliver runs on the fetch
// goroutine and only for a result that was still current when it arrived; callers that
// hop to another goroutine must call Settle before applying it.
func (that *Fetcher) Fetch(ctx context.Context, roomID uint64, deliver func(Result)) Token {
	that.mu.Lock()
	if that.cancel != nil {
		that.cancel()
	}
	that.current++
	token := that.current
	fetchCtx, cancel := context.WithCancel(ctx)
	that.cancel = cancel
	that.mu.Unlock()

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()
		defer cancel()

		that.run(fetchCtx, token, roomID, deliver)
	}()

	return token
}

func (that *Fetcher) run(ctx context.Context, token Token, roomID uint64, deliver func(Result)) {
	log := that.logger.With("method", "run", "room_id", roomID, "token", token)

	info, err := that.client.GetRoom(ctx, roomID)
	if err != nil {
		if IsCancelled(err) || ctx.Err() != nil {
			log.Debug("room info fetch cancelled")
			return
		}

		log.Error("failed to fetch room info", "error", err)
		return
	}

	if !that.IsCurrent(token) {
		log.Debug("discarding superseded room info")
		return
	}

	deliver(Result{Token: token, RoomID: roomID, Info: info})
}

// IsCurrent reports whether token belongs to the latest fetch and was not cancelled.
func (that *Fetcher) IsCurrent(token Token) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return token == that.current && that.cancel != nil
}

// Settle consumes a delivered result. It returns false when the result was superseded in the
// meantime and must be dropped.
func (that *Fetcher) Settle(token Token) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if token != that.current || that.cancel == nil {
		return false
	}

	that.cancel()
	that.cancel = nil

	return true
}

// Cancel drops the pending fetch, if any.
func (that *Fetcher) Cancel() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.cancel != nil {
		that.cancel()
		that.cancel = nil
	}
	that.current++
}

// Wait blocks until every started fetch goroutine has returned.
func (that *Fetcher) Wait() {
	that.wg.Wait()
}
