package websocket

import (
	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Action tags every protocol message.
type Action string

const (
	ActionStep              Action = "step"
	ActionSyncSymbol        Action = "sync symbol"
	ActionChooseSymbol      Action = "choose symbol"
	ActionGetPositions      Action = "get positions"
	ActionSelectSymbol      Action = "select symbol"
	ActionSelectedSymbol    Action = "selected symbol"
	ActionResize            Action = "resize"
	ActionResetGame         Action = "reset game"
	ActionGameEnd           Action = "game end"
	ActionRestartGame       Action = "restart game"
	ActionExitRoom          Action = "exit room"
	ActionNewConnectionRoom Action = "new connection to room"
)

// Inbound is a decoded server message. The concrete types below are the complete set.
type Inbound interface {
	Action() Action
}

type ResetGame struct{}

type NewConnection struct {
	UserID uuid.UUID
}

// Positions is the server's full, ordered list of placed marks and the symbol to move next.
type Positions struct {
	Positions []entity.Position
	Turn      entity.Symbol
}

type Resize struct {
	Size int
}

// ChooseSymbol tells the room which user has to pick a symbol.
type ChooseSymbol struct {
	UserID uuid.UUID
}

type SelectedSymbol struct {
	Symbol entity.Symbol
}

type RestartGame struct{}

type SyncSymbol struct {
	Symbol entity.Symbol
}

func (ResetGame) Action() Action      { return ActionResetGame }
func (NewConnection) Action() Action  { return ActionNewConnectionRoom }
func (Positions) Action() Action      { return ActionGetPositions }
func (Resize) Action() Action         { return ActionResize }
func (ChooseSymbol) Action() Action   { return ActionChooseSymbol }
func (SelectedSymbol) Action() Action { return ActionSelectedSymbol }
func (RestartGame) Action() Action    { return ActionRestartGame }
func (SyncSymbol) Action() Action     { return ActionSyncSymbol }

// StateChange is reported to the listener on every connection state transition.
type StateChange struct {
	State  entity.ConnectionState
	Code   int
	Reason string
	// Leave asks the caller to drop the room: it is full, closed or gone.
	Leave bool
	Err   error
}
