package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

type move struct {
	row, col int
	symbol   entity.Symbol
}

func play(t *testing.T, sess *GameSession, moves ...move) {
	t.Helper()

	for _, m := range moves {
		require.NoError(t, sess.ApplyMove(m.row, m.col, m.symbol))
	}
}

func TestGameSession_ApplyMove(t *testing.T) {
	t.Run("X wins on row 0 after the fifth move", func(t *testing.T) {
		// Given: a fresh 3x3 session
		sess := New(1, uuid.New(), 3)

		// When: the players alternate until X completes row 0
		play(t, sess,
			move{0, 0, entity.SymbolX},
			move{1, 1, entity.SymbolO},
			move{0, 1, entity.SymbolX},
			move{2, 2, entity.SymbolO},
		)
		assert.Equal(t, entity.InProgress, sess.Outcome())

		require.NoError(t, sess.ApplyMove(0, 2, entity.SymbolX))

		// Then: X has won
		assert.Equal(t, entity.WinX, sess.Outcome())
		assert.True(t, sess.GameStarted())
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		play(t, sess,
			move{0, 0, entity.SymbolX},
			move{0, 1, entity.SymbolO},
			move{0, 2, entity.SymbolX},
			move{1, 0, entity.SymbolO},
			move{1, 1, entity.SymbolX},
			move{1, 2, entity.SymbolO},
			move{2, 1, entity.SymbolX},
			move{2, 0, entity.SymbolO},
			move{2, 2, entity.SymbolO},
		)

		assert.Equal(t, entity.Draw, sess.Outcome())
	})

	t.Run("Occupied cell is rejected without touching the board", func(t *testing.T) {
		// Given: a session where X holds the centre
		sess := New(1, uuid.New(), 3)
		play(t, sess, move{1, 1, entity.SymbolX})
		before := sess.Board().String()

		// When: both players try the same cell again
		for _, symbol := range []entity.Symbol{entity.SymbolO, entity.SymbolX} {
			err := sess.ApplyMove(1, 1, symbol)

			// Then: the move fails and nothing changes
			require.ErrorIs(t, err, apperror.ErrCellOccupied)
			assert.Equal(t, before, sess.Board().String())
			assert.Equal(t, entity.InProgress, sess.Outcome())
		}
	})

	t.Run("Decided game rejects every move", func(t *testing.T) {
		sess := New(1, uuid.New(), 1)
		play(t, sess, move{0, 0, entity.SymbolO})
		require.Equal(t, entity.WinO, sess.Outcome())

		require.ErrorIs(t, sess.ApplyMove(0, 0, entity.SymbolX), apperror.ErrGameAlreadyDecided)
		require.ErrorIs(t, sess.ApplyMove(5, 5, entity.SymbolX), apperror.ErrGameAlreadyDecided)
	})

	t.Run("Out of range and invalid symbols are rejected", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		require.ErrorIs(t, sess.ApplyMove(3, 0, entity.SymbolX), apperror.ErrOutOfRange)
		require.ErrorIs(t, sess.ApplyMove(0, -1, entity.SymbolX), apperror.ErrOutOfRange)
		require.ErrorIs(t, sess.ApplyMove(0, 0, entity.Empty), apperror.ErrInvalidSymbol)
		assert.True(t, sess.Board().IsEmpty())
		assert.False(t, sess.GameStarted())
	})
}

func TestGameSession_CheckpointRestore(t *testing.T) {
	// Given: a session one move away from X winning
	sess := New(1, uuid.New(), 3)
	play(t, sess,
		move{0, 0, entity.SymbolX},
		move{1, 1, entity.SymbolO},
		move{0, 1, entity.SymbolX},
		move{2, 2, entity.SymbolO},
	)
	sess.SetCurrentTurn(entity.SymbolX)
	checkpoint := sess.Checkpoint()

	// When: the winning move is applied and then taken back
	require.NoError(t, sess.ApplyMove(0, 2, entity.SymbolX))
	sess.SetCurrentTurn(entity.SymbolO)
	require.Equal(t, entity.WinX, sess.Outcome())

	sess.Restore(checkpoint)

	// Then: board, outcome and turn are as before the move
	assert.Equal(t, entity.Empty, sess.Board().Get(0, 2))
	assert.Equal(t, entity.SymbolX, sess.Board().Get(0, 0))
	assert.Equal(t, entity.InProgress, sess.Outcome())
	assert.Equal(t, entity.SymbolX, sess.CurrentTurn())
	assert.True(t, sess.GameStarted())
}

func TestGameSession_ResetGame(t *testing.T) {
	// Given: a decided game
	sess := New(1, uuid.New(), 3)
	play(t, sess,
		move{0, 0, entity.SymbolX},
		move{1, 0, entity.SymbolO},
		move{0, 1, entity.SymbolX},
		move{1, 1, entity.SymbolO},
		move{0, 2, entity.SymbolX},
	)
	require.Equal(t, entity.WinX, sess.Outcome())

	// When: the game is reset twice
	sess.ResetGame()
	sess.ResetGame()

	// Then: the board is empty and open again
	assert.Equal(t, entity.InProgress, sess.Outcome())
	assert.Equal(t, entity.InProgress, tictactoe.Evaluate(sess.Board()))
	assert.True(t, sess.Board().IsEmpty())
	assert.Equal(t, 3, sess.BoardSize())
	require.NoError(t, sess.ApplyMove(0, 0, entity.SymbolO))
}

func TestGameSession_Resize(t *testing.T) {
	t.Run("Resize replaces the board", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)
		play(t, sess, move{2, 2, entity.SymbolX})

		require.NoError(t, sess.Resize(5))

		assert.Equal(t, 5, sess.BoardSize())
		assert.True(t, sess.Board().IsEmpty())
		assert.Equal(t, entity.InProgress, sess.Outcome())
		require.NoError(t, sess.ApplyMove(4, 4, entity.SymbolX))
	})

	t.Run("Resize reopens a decided game", func(t *testing.T) {
		sess := New(1, uuid.New(), 1)
		play(t, sess, move{0, 0, entity.SymbolX})

		require.NoError(t, sess.Resize(3))

		assert.Equal(t, entity.InProgress, sess.Outcome())
	})

	t.Run("Resize below one is rejected", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		require.ErrorIs(t, sess.Resize(0), apperror.ErrInvalidBoardSize)
		assert.Equal(t, 3, sess.BoardSize())
	})
}

func TestGameSession_AdoptRoomInfo(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	t.Run("Assigned symbol is picked up", func(t *testing.T) {
		// Given: a session waiting for its symbol
		sess := New(9, me, 3)
		sess.RequestSymbolChoice(true)

		// When: room info reports our symbol
		sess.AdoptRoomInfo(&entity.RoomInfo{
			ID:        9,
			IsPrivate: true,
			Users: []entity.RoomUser{
				{ID: other, Name: "bob", Symbol: entity.SymbolX},
				{ID: me, Name: "alice", Symbol: entity.SymbolO},
			},
		})

		// Then: the symbol is ours and no dialog is pending
		assert.Equal(t, entity.SymbolO, sess.MySymbol())
		assert.False(t, sess.SymbolSelectionPending())
		assert.False(t, sess.WaitingOpponentSymbol())
		assert.True(t, sess.IsPrivate())

		opponent, ok := sess.Opponent()
		require.True(t, ok)
		assert.Equal(t, "bob", opponent.Name)
	})

	t.Run("Empty symbol keeps the current one", func(t *testing.T) {
		sess := New(9, me, 3)
		sess.AssignSymbol(entity.SymbolX)

		sess.AdoptRoomInfo(&entity.RoomInfo{ID: 9, Users: []entity.RoomUser{{ID: me}}})

		assert.Equal(t, entity.SymbolX, sess.MySymbol())
	})

	t.Run("Room info is replaced wholesale", func(t *testing.T) {
		sess := New(9, me, 3)
		sess.AdoptRoomInfo(&entity.RoomInfo{ID: 9, Name: "first", Users: []entity.RoomUser{{ID: me}, {ID: other}}})

		sess.AdoptRoomInfo(&entity.RoomInfo{ID: 9, Users: []entity.RoomUser{{ID: me}}})

		info := sess.RoomInfo()
		assert.Empty(t, info.Name)
		assert.Len(t, info.Users, 1)
	})

	t.Run("Privacy flag is not taken from room info while open", func(t *testing.T) {
		sess := New(9, me, 3)
		sess.ObserveConnection(entity.Open)

		sess.AdoptRoomInfo(&entity.RoomInfo{ID: 9, IsPrivate: true})

		assert.False(t, sess.IsPrivate())
	})
}

func TestGameSession_SymbolDirectives(t *testing.T) {
	t.Run("Choice for self opens the selection", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)
		sess.AssignSymbol(entity.SymbolX)

		sess.RequestSymbolChoice(true)

		assert.Equal(t, entity.Empty, sess.MySymbol())
		assert.True(t, sess.SymbolSelectionPending())
		assert.False(t, sess.WaitingOpponentSymbol())
	})

	t.Run("Choice for the opponent makes us wait", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		sess.RequestSymbolChoice(false)

		assert.True(t, sess.WaitingOpponentSymbol())
		assert.False(t, sess.SymbolSelectionPending())

		sess.AssignSymbol(entity.SymbolO)

		assert.Equal(t, entity.SymbolO, sess.MySymbol())
		assert.False(t, sess.WaitingOpponentSymbol())
	})
}

func TestGameSession_ObserveConnection(t *testing.T) {
	// Given: a session holding a symbol
	sess := New(1, uuid.New(), 3)
	sess.ObserveConnection(entity.Open)
	sess.AssignSymbol(entity.SymbolO)

	// When: the channel reports a password requirement
	sess.ObserveConnection(entity.ClosedPasswordRequired)

	// Then: the room is flagged private and our symbol is kept
	assert.Equal(t, entity.ClosedPasswordRequired, sess.Connection())
	assert.True(t, sess.IsPrivate())
	assert.Equal(t, entity.SymbolO, sess.MySymbol())
}

func TestGameSession_Reconcile(t *testing.T) {
	t.Run("Missing positions are appended", func(t *testing.T) {
		// Given: a board that already holds the first move
		sess := New(1, uuid.New(), 3)
		play(t, sess, move{0, 0, entity.SymbolX})

		// When: the server confirms it and adds the reply
		result := sess.Reconcile([]entity.Position{
			{Row: 0, Col: 0, Symbol: entity.SymbolX},
			{Row: 1, Col: 1, Symbol: entity.SymbolO},
		})

		// Then: only the reply is applied
		assert.False(t, result.Replayed)
		assert.Equal(t, 1, result.Applied)
		assert.Empty(t, result.Rejected)
		assert.Equal(t, "X..\n.O.\n...", sess.Board().String())
	})

	t.Run("Unconfirmed local move triggers a replay", func(t *testing.T) {
		// Given: a speculative local move the server has not seen yet
		sess := New(1, uuid.New(), 3)
		play(t, sess, move{0, 0, entity.SymbolX}, move{2, 2, entity.SymbolO})

		// When: the authoritative list lacks it
		result := sess.Reconcile([]entity.Position{
			{Row: 0, Col: 0, Symbol: entity.SymbolX},
		})

		// Then: the board mirrors the server exactly
		assert.True(t, result.Replayed)
		assert.Equal(t, "X..\n...\n...", sess.Board().String())
	})

	t.Run("Conflicting symbol triggers a replay", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)
		play(t, sess, move{1, 1, entity.SymbolO})

		result := sess.Reconcile([]entity.Position{
			{Row: 1, Col: 1, Symbol: entity.SymbolX},
			{Row: 0, Col: 0, Symbol: entity.SymbolO},
		})

		assert.True(t, result.Replayed)
		assert.Equal(t, 2, result.Applied)
		assert.Equal(t, "O..\n.X.\n...", sess.Board().String())
	})

	t.Run("Winning replay decides the game and drops later positions", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		result := sess.Reconcile([]entity.Position{
			{Row: 0, Col: 0, Symbol: entity.SymbolX},
			{Row: 1, Col: 0, Symbol: entity.SymbolO},
			{Row: 0, Col: 1, Symbol: entity.SymbolX},
			{Row: 1, Col: 1, Symbol: entity.SymbolO},
			{Row: 0, Col: 2, Symbol: entity.SymbolX},
			{Row: 2, Col: 2, Symbol: entity.SymbolO},
		})

		assert.Equal(t, entity.WinX, sess.Outcome())
		assert.Equal(t, 5, result.Applied)
		require.Len(t, result.Rejected, 1)
		require.ErrorIs(t, result.Rejected[0], apperror.ErrGameAlreadyDecided)
	})

	t.Run("Out of range positions are reported", func(t *testing.T) {
		sess := New(1, uuid.New(), 3)

		result := sess.Reconcile([]entity.Position{{Row: 7, Col: 7, Symbol: entity.SymbolX}})

		require.Len(t, result.Rejected, 1)
		require.ErrorIs(t, result.Rejected[0], apperror.ErrOutOfRange)
		assert.True(t, sess.Board().IsEmpty())
	})
}

func TestGameSession_Snapshot(t *testing.T) {
	me := uuid.New()
	sess := New(4, me, 3)
	sess.AssignSymbol(entity.SymbolX)
	sess.SetCurrentTurn(entity.SymbolX)
	play(t, sess, move{0, 0, entity.SymbolX})

	snapshot := sess.Snapshot()

	assert.Equal(t, uint64(4), snapshot.RoomID)
	assert.Equal(t, me, snapshot.UserID)
	assert.Equal(t, entity.SymbolX, snapshot.Board[0][0])
	assert.Equal(t, entity.ResultNone, snapshot.Result)
	assert.True(t, snapshot.IsMyTurn())

	// snapshots do not alias the live board
	snapshot.Board[1][1] = entity.SymbolO
	assert.Equal(t, entity.Empty, sess.Board().Get(1, 1))
}
