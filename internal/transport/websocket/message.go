package websocket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// envelope is the wire form shared by both directions.
type envelope struct {
	Action   Action          `json:"action"`
	Data     json.RawMessage `json:"data,omitempty"`
	Password *string         `json:"password,omitempty"`
	Size     *int            `json:"size,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	UserID   string          `json:"user_id,omitempty"`
}

type positionPayload struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

type positionsPayload struct {
	Positions []positionPayload `json:"positions"`
}

type gameEndPayload struct {
	IsWon                int    `json:"is_won"`
	UserID               string `json:"user_id"`
	VersusPlayerNickname string `json:"versus_player_nickname"`
}

// Outbound is a message the client sends to the server.
type Outbound struct {
	env envelope
}

func (that Outbound) Action() Action {
	return that.env.Action
}

func (that Outbound) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.env)
}

// NewConnectionMessage greets the room; the password is always present, possibly empty.
func NewConnectionMessage(password string) Outbound {
	return Outbound{envelope{Action: ActionNewConnectionRoom, Password: &password}}
}

// StepMessage submits a move at zero-based (row, col).
func StepMessage(row, col int, symbol entity.Symbol) Outbound {
	data := mustMarshal(positionPayload{ID: FormatPositionID(row, col), Symbol: string(symbol)})
	return Outbound{envelope{Action: ActionStep, Data: data}}
}

func SelectSymbolMessage(symbol entity.Symbol) Outbound {
	return Outbound{envelope{Action: ActionSelectSymbol, Symbol: string(symbol)}}
}

func ResizeMessage(size int) Outbound {
	return Outbound{envelope{Action: ActionResize, Size: &size}}
}

func ResetGameMessage() Outbound {
	return Outbound{envelope{Action: ActionResetGame}}
}

func ExitRoomMessage() Outbound {
	return Outbound{envelope{Action: ActionExitRoom}}
}

// GameEndMessage reports our result: 1 won, 0 lost, -1 draw.
func GameEndMessage(result entity.PlayerResult, userID uuid.UUID, versusNickname string) Outbound {
	isWon := 0
	switch result {
	case entity.ResultWon:
		isWon = 1
	case entity.ResultDraw:
		isWon = -1
	case entity.ResultLost, entity.ResultNone:
	}

	data := mustMarshal(gameEndPayload{
		IsWon:                isWon,
		UserID:               userID.String(),
		VersusPlayerNickname: versusNickname,
	})

	return Outbound{envelope{Action: ActionGameEnd, Data: data}}
}

// FormatPositionID renders zero-based coordinates as the server's one-based "row-col" id.
func FormatPositionID(row, col int) string {
	return strconv.Itoa(row+1) + "-" + strconv.Itoa(col+1)
}

// ParsePositionID reads a one-based "row-col" id into zero-based coordinates.
func ParsePositionID(id string) (int, int, error) {
	rawRow, rawCol, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: position id %q", apperror.ErrMalformedPayload, id)
	}

	row, err := strconv.Atoi(rawRow)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: position id %q: %w", apperror.ErrMalformedPayload, id, err)
	}

	col, err := strconv.Atoi(rawCol)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: position id %q: %w", apperror.ErrMalformedPayload, id, err)
	}

	if row < 1 || col < 1 {
		return 0, 0, fmt.Errorf("%w: position id %q", apperror.ErrMalformedPayload, id)
	}

	return row - 1, col - 1, nil
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
