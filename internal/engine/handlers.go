package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
)

func (that *Engine) handleResetGame(ctx context.Context, _ websocket.Inbound) {
	that.session.ResetGame()
	that.afterMutation(ctx)
}

func (that *Engine) handleNewConnection(ctx context.Context, _ websocket.Inbound) {
	that.fetchRoom(ctx)
}

func (that *Engine) handlePositions(ctx context.Context, msg websocket.Inbound) {
	log := that.logger.With("method", "handlePositions")

	positions, ok := msg.(websocket.Positions)
	if !ok {
		return
	}

	if len(positions.Positions) == 0 {
		that.session.ResetGame()
		that.session.SetCurrentTurn(entity.FirstMover)
		that.afterMutation(ctx)
		that.fetchRoom(ctx)
		return
	}

	result := that.session.Reconcile(positions.Positions)
	for _, err := range result.Rejected {
		log.Warn("position rejected", "error", err)
	}
	if result.Replayed {
		log.Info("board replayed from server positions", "applied", result.Applied)
	}

	if positions.Turn.IsPlayer() {
		that.session.SetCurrentTurn(positions.Turn)
	}

	that.afterMutation(ctx)
}

func (that *Engine) handleResize(ctx context.Context, msg websocket.Inbound) {
	resize, ok := msg.(websocket.Resize)
	if !ok {
		return
	}

	if err := that.session.Resize(resize.Size); err != nil {
		that.logger.Warn("failed to resize board", "size", resize.Size, "error", err)
		return
	}
	that.afterMutation(ctx)
}

func (that *Engine) handleChooseSymbol(_ context.Context, msg websocket.Inbound) {
	choose, ok := msg.(websocket.ChooseSymbol)
	if !ok {
		return
	}

	forSelf := choose.UserID != uuid.Nil && choose.UserID == that.session.UserID()
	that.session.RequestSymbolChoice(forSelf)
}

func (that *Engine) handleSelectedSymbol(_ context.Context, msg websocket.Inbound) {
	selected, ok := msg.(websocket.SelectedSymbol)
	if !ok {
		return
	}

	that.session.AssignSymbol(selected.Symbol)
	that.session.SetCurrentTurn(entity.FirstMover)
}

func (that *Engine) handleRestartGame(_ context.Context, _ websocket.Inbound) {
	that.session.SetCurrentTurn(entity.FirstMover)
}

func (that *Engine) handleSyncSymbol(_ context.Context, msg websocket.Inbound) {
	sync, ok := msg.(websocket.SyncSymbol)
	if !ok {
		return
	}

	that.session.AssignSymbol(sync.Symbol)
}
