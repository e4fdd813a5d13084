package apperror

import "errors"

// move errors, surfaced to the caller synchronously.
var (
	ErrGameAlreadyDecided = errors.New("game is already decided")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrOutOfRange         = errors.New("cell is out of range")
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidBoardSize   = errors.New("invalid board size")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrSymbolNotAssigned  = errors.New("symbol is not assigned yet")
)

// fetch errors, logged at the fetch boundary.
var (
	ErrNetworkFailure = errors.New("network failure")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
)

// protocol errors, inbound messages carrying them are dropped.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownAction    = errors.New("unknown action")
)

// channel errors drive the connection state machine.
var (
	ErrHandshakeFailed = errors.New("handshake failed")
	ErrPolicyClosed    = errors.New("closed by policy: password required")
	ErrPeerClosed      = errors.New("closed by peer")
	ErrChannelClosed   = errors.New("channel is closed")
)

// IsMoveError reports whether err is a rejected move.
func IsMoveError(err error) bool {
	return errors.Is(err, ErrGameAlreadyDecided) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrSymbolNotAssigned)
}
