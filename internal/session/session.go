// Package session holds the client-side state of one room: the board, the symbols and
// the room membership mirrored from the server.
//
// A GameSession is not safe for concurrent use; the engine confines it to one goroutine.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

type GameSession struct {
	roomID uint64
	userID uuid.UUID

	mySymbol    entity.Symbol
	currentTurn entity.Symbol

	board   *entity.Board
	outcome entity.Outcome

	roomInfo   *entity.RoomInfo
	connection entity.ConnectionState

	isPrivate              bool
	symbolSelectionPending bool
	waitingOpponentSymbol  bool
	gameStarted            bool
}

// ReconcileResult describes how an authoritative position list was applied.
type ReconcileResult struct {
	Replayed bool
	Applied  int
	Rejected []error
}

// Checkpoint is the board-related state captured before a tentative move.
type Checkpoint struct {
	board       *entity.Board
	outcome     entity.Outcome
	currentTurn entity.Symbol
	gameStarted bool
}

func New(roomID uint64, userID uuid.UUID, size int) *GameSession {
	if size < 1 {
		size = entity.DefaultBoardSize
	}

	return &GameSession{
		roomID:     roomID,
		userID:     userID,
		board:      entity.NewBoard(size),
		outcome:    entity.InProgress,
		connection: entity.Connecting,
	}
}

// ApplyMove places symbol at (row, col) and re-evaluates the board.
// A rejected move leaves the session untouched.
func (that *GameSession) ApplyMove(row, col int, symbol entity.Symbol) error {
	if that.outcome.IsDecided() {
		return fmt.Errorf("%w: %s", apperror.ErrGameAlreadyDecided, that.outcome)
	}

	if !that.board.InRange(row, col) {
		return fmt.Errorf("%w: %d-%d on a %dx%d board", apperror.ErrOutOfRange, row, col, that.board.Size(), that.board.Size())
	}

	if !symbol.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidSymbol, string(symbol))
	}

	if that.board.Get(row, col) != entity.Empty {
		return fmt.Errorf("%w: %d-%d", apperror.ErrCellOccupied, row, col)
	}

	that.board.Set(row, col, symbol)
	that.outcome = tictactoe.Evaluate(that.board)
	that.gameStarted = true

	return nil
}

// Checkpoint captures the board, outcome and turn so a move can be taken back.
func (that *GameSession) Checkpoint() Checkpoint {
	return Checkpoint{
		board:       that.board.Clone(),
		outcome:     that.outcome,
		currentTurn: that.currentTurn,
		gameStarted: that.gameStarted,
	}
}

// Restore puts back the state captured by Checkpoint.
func (that *GameSession) Restore(checkpoint Checkpoint) {
	if checkpoint.board == nil {
		return
	}

	that.board = checkpoint.board
	that.outcome = checkpoint.outcome
	that.currentTurn = checkpoint.currentTurn
	that.gameStarted = checkpoint.gameStarted
}

// ResetGame clears the board and reopens the game.
func (that *GameSession) ResetGame() {
	that.board.Clear()
	that.outcome = entity.InProgress
	that.gameStarted = false
}

// Resize replaces the board with an empty one of the new size.
func (that *GameSession) Resize(size int) error {
	if size < 1 {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, size)
	}

	that.board = entity.NewBoard(size)
	that.outcome = entity.InProgress
	that.gameStarted = false

	return nil
}

// Reconcile brings the board in line with the server's full list of positions.
//
// When the local board holds a mark the list does not confirm, the board is cleared and the
// list replayed in order. Otherwise only the missing positions are applied.
func (that *GameSession) Reconcile(positions []entity.Position) ReconcileResult {
	var result ReconcileResult

	if that.conflictsWith(positions) {
		that.ResetGame()
		result.Replayed = true
	}

	for _, position := range positions {
		if !result.Replayed && position.Symbol != entity.Empty &&
			that.board.InRange(position.Row, position.Col) &&
			that.board.Get(position.Row, position.Col) == position.Symbol {
			continue
		}

		if err := that.ApplyMove(position.Row, position.Col, position.Symbol); err != nil {
			result.Rejected = append(result.Rejected, err)
			continue
		}

		result.Applied++
	}

	return result
}

func (that *GameSession) conflictsWith(positions []entity.Position) bool {
	size := that.board.Size()
	confirmed := make(map[int]entity.Symbol, len(positions))

	for _, position := range positions {
		if !that.board.InRange(position.Row, position.Col) {
			continue
		}

		key := position.Row*size + position.Col
		if _, seen := confirmed[key]; seen {
			continue
		}
		confirmed[key] = position.Symbol

		local := that.board.Get(position.Row, position.Col)
		if local != entity.Empty && local != position.Symbol {
			return true
		}
	}

	matched := 0
	for key, symbol := range confirmed {
		if symbol != entity.Empty && that.board.Get(key/size, key%size) == symbol {
			matched++
		}
	}

	return that.board.Occupied() > matched
}

// AdoptRoomInfo replaces the room snapshot and picks up the symbol the server assigned to us.
func (that *GameSession) AdoptRoomInfo(info *entity.RoomInfo) {
	if info == nil {
		return
	}

	that.roomInfo = info.Clone()

	if me, ok := that.roomInfo.FindUser(that.userID); ok && me.Symbol.IsPlayer() {
		that.mySymbol = me.Symbol
		that.symbolSelectionPending = false
		that.waitingOpponentSymbol = false
	}

	if that.connection != entity.Open {
		that.isPrivate = that.roomInfo.IsPrivate
	}
}

// AssignSymbol records the symbol the server gave us.
func (that *GameSession) AssignSymbol(symbol entity.Symbol) {
	that.mySymbol = symbol
	that.waitingOpponentSymbol = false
	if symbol.IsPlayer() {
		that.symbolSelectionPending = false
	}
}

// RequestSymbolChoice drops the current symbol and marks who has to pick the next one.
func (that *GameSession) RequestSymbolChoice(forSelf bool) {
	that.mySymbol = entity.Empty

	if forSelf {
		that.symbolSelectionPending = true
		that.waitingOpponentSymbol = false
		return
	}

	that.symbolSelectionPending = false
	that.waitingOpponentSymbol = true
}

func (that *GameSession) SetCurrentTurn(symbol entity.Symbol) {
	that.currentTurn = symbol
}

// ObserveConnection mirrors the channel state; the session never changes it itself.
func (that *GameSession) ObserveConnection(state entity.ConnectionState) {
	that.connection = state

	switch state {
	case entity.Open:
		that.isPrivate = false
	case entity.ClosedPasswordRequired:
		that.isPrivate = true
	case entity.Connecting, entity.ClosedTerminal:
	}
}

func (that *GameSession) RoomID() uint64 {
	return that.roomID
}

func (that *GameSession) UserID() uuid.UUID {
	return that.userID
}

func (that *GameSession) MySymbol() entity.Symbol {
	return that.mySymbol
}

func (that *GameSession) CurrentTurn() entity.Symbol {
	return that.currentTurn
}

func (that *GameSession) BoardSize() int {
	return that.board.Size()
}

// Board returns a copy of the board.
func (that *GameSession) Board() *entity.Board {
	return that.board.Clone()
}

func (that *GameSession) Outcome() entity.Outcome {
	return that.outcome
}

// Result returns the outcome from our side of the table.
func (that *GameSession) Result() entity.PlayerResult {
	return entity.ResultFor(that.outcome, that.mySymbol)
}

func (that *GameSession) RoomInfo() *entity.RoomInfo {
	return that.roomInfo.Clone()
}

// Opponent returns the other member of the room, if the room info knows one.
func (that *GameSession) Opponent() (entity.RoomUser, bool) {
	if that.roomInfo == nil {
		return entity.RoomUser{}, false
	}
	return that.roomInfo.Opponent(that.userID)
}

func (that *GameSession) Connection() entity.ConnectionState {
	return that.connection
}

func (that *GameSession) IsPrivate() bool {
	return that.isPrivate
}

func (that *GameSession) SymbolSelectionPending() bool {
	return that.symbolSelectionPending
}

func (that *GameSession) WaitingOpponentSymbol() bool {
	return that.waitingOpponentSymbol
}

func (that *GameSession) GameStarted() bool {
	return that.gameStarted
}

func (that *GameSession) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		RoomID:                 that.roomID,
		UserID:                 that.userID,
		MySymbol:               that.mySymbol,
		CurrentTurn:            that.currentTurn,
		BoardSize:              that.board.Size(),
		Board:                  that.board.Rows(),
		Outcome:                that.outcome,
		Result:                 that.Result(),
		Room:                   that.roomInfo.Clone(),
		IsPrivate:              that.isPrivate,
		SymbolSelectionPending: that.symbolSelectionPending,
		WaitingOpponentSymbol:  that.waitingOpponentSymbol,
		GameStarted:            that.gameStarted,
		Connection:             that.connection,
	}
}
