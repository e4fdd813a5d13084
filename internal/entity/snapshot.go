package entity

import "github.com/google/uuid"

// Snapshot is a read-only copy of a game session handed to observers.
type Snapshot struct {
	RoomID                 uint64          `json:"room_id"`
	UserID                 uuid.UUID       `json:"user_id"`
	MySymbol               Symbol          `json:"my_symbol"`
	CurrentTurn            Symbol          `json:"current_turn"`
	BoardSize              int             `json:"board_size"`
	Board                  [][]Symbol      `json:"board"`
	Outcome                Outcome         `json:"outcome"`
	Result                 PlayerResult    `json:"result"`
	Room                   *RoomInfo       `json:"room,omitempty"`
	IsPrivate              bool            `json:"is_private"`
	SymbolSelectionPending bool            `json:"symbol_selection_pending"`
	WaitingOpponentSymbol  bool            `json:"waiting_opponent_symbol"`
	GameStarted            bool            `json:"game_started"`
	Connection             ConnectionState `json:"connection"`
}

// IsMyTurn reports whether the local player may move now.
func (that Snapshot) IsMyTurn() bool {
	return that.MySymbol.IsPlayer() && that.CurrentTurn == that.MySymbol && !that.Outcome.IsDecided()
}
