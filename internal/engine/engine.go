// Package engine runs the realtime sync loop of one room. A single goroutine owns the
// game session; channel frames, fetch results, the poller and UI commands all reach it
// through the inbox.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/roominfo"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

const inboxSize = 64

type sender interface {
	Send(ctx context.Context, msg websocket.Outbound) error
}

type fetcher interface {
	Fetch(ctx context.Context, roomID uint64, deliver func(roominfo.Result)) roominfo.Token
	Settle(token roominfo.Token) bool
	Cancel()
}

// CloseError ends a Run. It unwraps to the cause carried by the state change.
type CloseError struct {
	Change websocket.StateChange
}

func (that *CloseError) Error() string {
	if that.Change.Err != nil {
		return fmt.Sprintf("channel %s: %v", that.Change.State, that.Change.Err)
	}
	return fmt.Sprintf("channel %s: code %d %s", that.Change.State, that.Change.Code, that.Change.Reason)
}

func (that *CloseError) Unwrap() error {
	return that.Change.Err
}

type Engine struct {
	logger       *slog.Logger
	session      *session.GameSession
	fetcher      fetcher
	observers    []Observer
	pollInterval time.Duration
	handlers     map[websocket.Action]func(ctx context.Context, msg websocket.Inbound)

	inbox    chan event
	stopped  chan struct{}
	stopOnce sync.Once

	// run counts finished runs; idle is closed when the current run ends.
	runMu   sync.Mutex
	running bool
	run     uint64
	idle    chan struct{}

	// owned by the Run goroutine
	sender      sender
	ticker      *time.Ticker
	gameEndSent bool
}

func New(logger *slog.Logger, sess *session.GameSession, fetcher fetcher, opts ...Option) *Engine {
	engine := &Engine{
		logger:  logger.With("component", "engine", "room_id", sess.RoomID()),
		session: sess,
		fetcher: fetcher,
		inbox:   make(chan event, inboxSize),
		stopped: make(chan struct{}),
		idle:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(engine)
	}

	engine.handlers = map[websocket.Action]func(context.Context, websocket.Inbound){
		websocket.ActionResetGame:         engine.handleResetGame,
		websocket.ActionNewConnectionRoom: engine.handleNewConnection,
		websocket.ActionGetPositions:      engine.handlePositions,
		websocket.ActionResize:            engine.handleResize,
		websocket.ActionChooseSymbol:      engine.handleChooseSymbol,
		websocket.ActionSelectedSymbol:    engine.handleSelectedSymbol,
		websocket.ActionRestartGame:       engine.handleRestartGame,
		websocket.ActionSyncSymbol:        engine.handleSyncSymbol,
	}

	return engine
}

// Run consumes the inbox until ctx is done or the channel closes. A closed channel ends the
// run with a *CloseError; Run may be called again with a new sender after a reconnect.
func (that *Engine) Run(ctx context.Context, sender sender) error {
	log := that.logger.With("method", "Run")

	that.sender = sender
	that.beginRun()
	defer that.endRun()
	defer that.stopPoller()

	for {
		var tick <-chan time.Time
		if that.ticker != nil {
			tick = that.ticker.C
		}

		select {
		case <-ctx.Done():
			that.fetcher.Cancel()
			return ctx.Err()

		case <-that.stopped:
			that.fetcher.Cancel()
			return nil

		case <-tick:
			log.Debug("polling room info")
			that.fetchRoom(ctx)

		case ev := <-that.inbox:
			if err := that.handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (that *Engine) beginRun() {
	that.runMu.Lock()
	defer that.runMu.Unlock()

	if that.run > 0 {
		that.idle = make(chan struct{})
	}
	that.running = true
}

// endRun answers every caller still waiting on this run with ErrChannelClosed.
func (that *Engine) endRun() {
	that.runMu.Lock()
	defer that.runMu.Unlock()

	that.running = false
	that.run++
	close(that.idle)
}

func (that *Engine) currentRun() uint64 {
	that.runMu.Lock()
	defer that.runMu.Unlock()

	return that.run
}

// Close stops a running loop and unblocks pending listener calls.
func (that *Engine) Close() {
	that.stopOnce.Do(func() {
		close(that.stopped)
	})
}

func (that *Engine) handle(ctx context.Context, ev event) error {
	if cmd, ok := ev.(interface{ runID() uint64 }); ok && cmd.runID() != that.currentRun() {
		that.logger.Debug("dropping command from a previous connection")
		return nil
	}

	switch ev := ev.(type) {
	case inbound:
		handler, ok := that.handlers[ev.msg.Action()]
		if !ok {
			that.logger.Debug("no handler for action", "action", ev.msg.Action())
			return nil
		}
		handler(ctx, ev.msg)

	case stateChanged:
		if err := that.handleStateChange(ev.change); err != nil {
			that.notify(ctx)
			return err
		}

	case roomFetched:
		if !that.fetcher.Settle(ev.result.Token) {
			that.logger.Debug("dropping stale room info", "token", ev.result.Token)
			return nil
		}
		that.session.AdoptRoomInfo(ev.result.Info)

	case playMove:
		ev.reply <- that.playMove(ctx, ev.row, ev.col)

	case selectSymbol:
		ev.reply <- that.selectSymbol(ctx, ev.symbol)

	case resizeBoard:
		ev.reply <- that.resize(ctx, ev.size)

	case resetBoard:
		ev.reply <- that.resetBoard(ctx)

	case exitRoom:
		ev.reply <- that.exitRoom(ctx)

	case snapshotRequest:
		ev.reply <- that.session.Snapshot()
		return nil
	}

	that.notify(ctx)

	return nil
}

func (that *Engine) handleStateChange(change websocket.StateChange) error {
	log := that.logger.With("method", "handleStateChange", "state", change.State)

	that.session.ObserveConnection(change.State)

	switch change.State {
	case entity.Open:
		log.Info("channel open")
		that.startPoller()
		return nil

	case entity.ClosedPasswordRequired, entity.ClosedTerminal:
		log.Info("channel closed", "code", change.Code, "reason", change.Reason, "leave", change.Leave)
		that.stopPoller()
		that.fetcher.Cancel()
		return &CloseError{Change: change}

	case entity.Connecting:
		return nil
	}

	return nil
}

func (that *Engine) startPoller() {
	if that.pollInterval <= 0 || that.ticker != nil {
		return
	}
	that.ticker = time.NewTicker(that.pollInterval)
}

func (that *Engine) stopPoller() {
	if that.ticker == nil {
		return
	}
	that.ticker.Stop()
	that.ticker = nil
}

func (that *Engine) fetchRoom(ctx context.Context) {
	that.fetcher.Fetch(ctx, that.session.RoomID(), func(result roominfo.Result) {
		that.post(ctx, roomFetched{result: result})
	})
}

// afterMutation reports the result of a game that has just been decided, once per game.
func (that *Engine) afterMutation(ctx context.Context) {
	log := that.logger.With("method", "afterMutation")

	outcome := that.session.Outcome()
	if !outcome.IsDecided() {
		that.gameEndSent = false
		return
	}

	if that.gameEndSent || !that.session.MySymbol().IsPlayer() {
		return
	}
	that.gameEndSent = true

	var nickname string
	if opponent, ok := that.session.Opponent(); ok {
		nickname = opponent.Name
	}

	msg := websocket.GameEndMessage(that.session.Result(), that.session.UserID(), nickname)
	if err := that.send(ctx, msg); err != nil {
		log.Error("failed to report game end", "error", err)
		return
	}

	log.Info("game decided", "outcome", outcome, "result", that.session.Result())
}

func (that *Engine) notify(ctx context.Context) {
	if len(that.observers) == 0 {
		return
	}

	snapshot := that.session.Snapshot()
	for _, observer := range that.observers {
		if err := observer.Observe(ctx, snapshot); err != nil {
			that.logger.Warn("observer failed", "error", err)
		}
	}
}

func (that *Engine) send(ctx context.Context, msg websocket.Outbound) error {
	if that.sender == nil || that.session.Connection() != entity.Open {
		return fmt.Errorf("%w: send %q", apperror.ErrChannelClosed, msg.Action())
	}

	return that.sender.Send(ctx, msg)
}

// post hands an event to the loop. It gives up once the engine is closed.
func (that *Engine) post(ctx context.Context, ev event) bool {
	select {
	case that.inbox <- ev:
		return true
	case <-that.stopped:
		return false
	case <-ctx.Done():
		return false
	}
}

// OnMessage implements websocket.Listener.
func (that *Engine) OnMessage(msg websocket.Inbound) {
	that.post(context.Background(), inbound{msg: msg})
}

// OnStateChange implements websocket.Listener.
func (that *Engine) OnStateChange(change websocket.StateChange) {
	that.post(context.Background(), stateChanged{change: change})
}
