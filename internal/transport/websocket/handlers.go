package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type decoder func(msg *envelope) (Inbound, error)

var decoders = map[Action]decoder{
	ActionResetGame:         decodeResetGame,
	ActionNewConnectionRoom: decodeNewConnection,
	ActionGetPositions:      decodePositions,
	ActionResize:            decodeResize,
	ActionChooseSymbol:      decodeChooseSymbol,
	ActionSelectedSymbol:    decodeSelectedSymbol,
	ActionRestartGame:       decodeRestartGame,
	ActionSyncSymbol:        decodeSyncSymbol,
}

// Decode parses a raw server frame into one of the Inbound message types.
func Decode(raw []byte) (Inbound, error) {
	var msg envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err)
	}

	decode, ok := decoders[msg.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, msg.Action)
	}

	return decode(&msg)
}

func decodeResetGame(*envelope) (Inbound, error) {
	return ResetGame{}, nil
}

func decodeRestartGame(*envelope) (Inbound, error) {
	return RestartGame{}, nil
}

func decodeNewConnection(msg *envelope) (Inbound, error) {
	if msg.UserID == "" {
		return NewConnection{}, nil
	}

	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return nil, err
	}

	return NewConnection{UserID: userID}, nil
}

func decodePositions(msg *envelope) (Inbound, error) {
	var payload positionsPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, fmt.Errorf("%w: positions: %w", apperror.ErrMalformedPayload, err)
		}
	}

	positions := make([]entity.Position, 0, len(payload.Positions))
	for _, p := range payload.Positions {
		row, col, err := ParsePositionID(p.ID)
		if err != nil {
			return nil, err
		}

		symbol, err := parsePlayerSymbol(p.Symbol)
		if err != nil {
			return nil, err
		}

		positions = append(positions, entity.Position{Row: row, Col: col, Symbol: symbol})
	}

	var turn entity.Symbol
	if msg.Symbol != "" {
		symbol, err := parsePlayerSymbol(msg.Symbol)
		if err != nil {
			return nil, err
		}
		turn = symbol
	}

	return Positions{Positions: positions, Turn: turn}, nil
}

func decodeResize(msg *envelope) (Inbound, error) {
	if msg.Size == nil || *msg.Size < 1 {
		return nil, fmt.Errorf("%w: resize without a positive size", apperror.ErrMalformedPayload)
	}

	return Resize{Size: *msg.Size}, nil
}

// decodeChooseSymbol keeps the directive even without a usable user_id; uuid.Nil then
// names nobody and the local player waits for the opponent.
func decodeChooseSymbol(msg *envelope) (Inbound, error) {
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return ChooseSymbol{UserID: uuid.Nil}, nil
	}

	return ChooseSymbol{UserID: userID}, nil
}

func decodeSelectedSymbol(msg *envelope) (Inbound, error) {
	symbol, err := parsePlayerSymbol(msg.Symbol)
	if err != nil {
		return nil, err
	}

	return SelectedSymbol{Symbol: symbol}, nil
}

func decodeSyncSymbol(msg *envelope) (Inbound, error) {
	symbol, err := parsePlayerSymbol(msg.Symbol)
	if err != nil {
		return nil, err
	}

	return SyncSymbol{Symbol: symbol}, nil
}

func parsePlayerSymbol(raw string) (entity.Symbol, error) {
	symbol, ok := entity.ParseSymbol(raw)
	if !ok || !symbol.IsPlayer() {
		return entity.Empty, fmt.Errorf("%w: symbol %q", apperror.ErrMalformedPayload, raw)
	}

	return symbol, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user_id %q: %w", apperror.ErrMalformedPayload, raw, err)
	}

	return userID, nil
}
