package engine

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

// PlayMove places the local player's symbol at zero-based (row, col) and sends the step.
func (that *Engine) PlayMove(ctx context.Context, row, col int) error {
	return that.call(ctx, func(cmd command) event {
		return playMove{command: cmd, row: row, col: col}
	})
}

// SelectSymbol answers a "choose symbol" directive.
func (that *Engine) SelectSymbol(ctx context.Context, symbol entity.Symbol) error {
	return that.call(ctx, func(cmd command) event {
		return selectSymbol{command: cmd, symbol: symbol}
	})
}

func (that *Engine) Resize(ctx context.Context, size int) error {
	return that.call(ctx, func(cmd command) event {
		return resizeBoard{command: cmd, size: size}
	})
}

// ResetBoard clears the board for both players.
func (that *Engine) ResetBoard(ctx context.Context) error {
	return that.call(ctx, func(cmd command) event {
		return resetBoard{command: cmd}
	})
}

// ExitRoom tells the server we are leaving and drops pending fetches.
func (that *Engine) ExitRoom(ctx context.Context) error {
	return that.call(ctx, func(cmd command) event {
		return exitRoom{command: cmd}
	})
}

// Snapshot returns the current session state. It fails with ErrChannelClosed between runs.
func (that *Engine) Snapshot(ctx context.Context) (entity.Snapshot, error) {
	run, idle, err := that.admit()
	if err != nil {
		return entity.Snapshot{}, err
	}

	reply := make(chan entity.Snapshot, 1)
	if !that.post(ctx, snapshotRequest{run: run, reply: reply}) {
		return entity.Snapshot{}, that.callError(ctx)
	}

	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-idle:
		return entity.Snapshot{}, apperror.ErrChannelClosed
	case <-that.stopped:
		return entity.Snapshot{}, apperror.ErrChannelClosed
	case <-ctx.Done():
		return entity.Snapshot{}, ctx.Err()
	}
}

func (that *Engine) call(ctx context.Context, build func(command) event) error {
	run, idle, err := that.admit()
	if err != nil {
		return err
	}

	cmd := command{run: run, reply: make(chan error, 1)}
	if !that.post(ctx, build(cmd)) {
		return that.callError(ctx)
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-idle:
		return apperror.ErrChannelClosed
	case <-that.stopped:
		return apperror.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// admit tags a command with the current run. Between runs there is nobody to answer it.
func (that *Engine) admit() (uint64, <-chan struct{}, error) {
	that.runMu.Lock()
	defer that.runMu.Unlock()

	if !that.running && that.run > 0 {
		return 0, nil, fmt.Errorf("%w: no active connection", apperror.ErrChannelClosed)
	}

	return that.run, that.idle, nil
}

func (that *Engine) callError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return apperror.ErrChannelClosed
}

func (that *Engine) playMove(ctx context.Context, row, col int) error {
	log := that.logger.With("method", "playMove")

	if err := that.requireOpen(); err != nil {
		return err
	}

	mySymbol := that.session.MySymbol()
	if !mySymbol.IsPlayer() {
		return apperror.ErrSymbolNotAssigned
	}

	if outcome := that.session.Outcome(); outcome.IsDecided() {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyDecided, outcome)
	}

	if turn := that.session.CurrentTurn(); turn.IsPlayer() && turn != mySymbol {
		return fmt.Errorf("%w: %s to move", apperror.ErrNotYourTurn, turn)
	}

	checkpoint := that.session.Checkpoint()

	if err := that.session.ApplyMove(row, col, mySymbol); err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}
	that.session.SetCurrentTurn(mySymbol.Opposite())

	// a move the server never saw is taken back
	if err := that.send(ctx, websocket.StepMessage(row, col, mySymbol)); err != nil {
		that.session.Restore(checkpoint)
		log.Error("failed to send step", "error", err)
		return fmt.Errorf("failed to send step: %w", err)
	}

	that.afterMutation(ctx)

	return nil
}

func (that *Engine) selectSymbol(ctx context.Context, symbol entity.Symbol) error {
	if !symbol.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidSymbol, string(symbol))
	}

	return that.send(ctx, websocket.SelectSymbolMessage(symbol))
}

func (that *Engine) resize(ctx context.Context, size int) error {
	if err := that.requireOpen(); err != nil {
		return err
	}

	if err := that.session.Resize(size); err != nil {
		return err
	}
	that.session.SetCurrentTurn(entity.FirstMover)
	that.afterMutation(ctx)

	return that.send(ctx, websocket.ResizeMessage(size))
}

func (that *Engine) resetBoard(ctx context.Context) error {
	if err := that.requireOpen(); err != nil {
		return err
	}

	that.session.ResetGame()
	that.session.SetCurrentTurn(entity.FirstMover)
	that.afterMutation(ctx)

	return that.send(ctx, websocket.ResetGameMessage())
}

func (that *Engine) exitRoom(ctx context.Context) error {
	that.stopPoller()
	that.fetcher.Cancel()

	return that.send(ctx, websocket.ExitRoomMessage())
}

func (that *Engine) requireOpen() error {
	if state := that.session.Connection(); state != entity.Open {
		return fmt.Errorf("%w: connection is %s", apperror.ErrChannelClosed, state)
	}
	return nil
}
