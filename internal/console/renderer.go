package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Renderer prints every snapshot it observes.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (that *Renderer) Observe(_ context.Context, snapshot entity.Snapshot) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := io.WriteString(that.out, Render(snapshot)); err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}

	return nil
}

// Render draws the board with one-based coordinates and a status line.
func Render(snapshot entity.Snapshot) string {
	var b strings.Builder

	b.WriteString("   ")
	for col := range snapshot.BoardSize {
		fmt.Fprintf(&b, "%3d", col+1)
	}
	b.WriteByte('\n')

	for row, cells := range snapshot.Board {
		fmt.Fprintf(&b, "%3d", row+1)
		for _, cell := range cells {
			fmt.Fprintf(&b, "%3s", cell.String())
		}
		b.WriteByte('\n')
	}

	b.WriteString(status(snapshot))
	b.WriteByte('\n')

	return b.String()
}

func status(snapshot entity.Snapshot) string {
	switch snapshot.Connection {
	case entity.Connecting:
		return "connecting..."
	case entity.ClosedPasswordRequired:
		return "room is private, type: password <pw>"
	case entity.ClosedTerminal:
		return "disconnected"
	case entity.Open:
	}

	switch {
	case snapshot.SymbolSelectionPending:
		return "choose your symbol: symbol <X|O>"
	case snapshot.WaitingOpponentSymbol:
		return "waiting for the opponent to choose a symbol"
	}

	switch snapshot.Result {
	case entity.ResultWon:
		return "you won"
	case entity.ResultLost:
		return "you lost"
	case entity.ResultDraw:
		return "draw"
	case entity.ResultNone:
	}

	if snapshot.Outcome.IsDecided() {
		return fmt.Sprintf("game over: %s", snapshot.Outcome)
	}

	if !snapshot.MySymbol.IsPlayer() {
		return "waiting for a symbol"
	}

	if snapshot.IsMyTurn() {
		return fmt.Sprintf("you are %s, your move", snapshot.MySymbol)
	}

	if !snapshot.CurrentTurn.IsPlayer() {
		return fmt.Sprintf("you are %s", snapshot.MySymbol)
	}

	return fmt.Sprintf("you are %s, waiting for %s", snapshot.MySymbol, snapshot.CurrentTurn)
}
