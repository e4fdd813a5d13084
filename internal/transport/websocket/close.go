package websocket

import (
	"fmt"

	"github.com/coder/websocket"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	reasonConnectionClosed = "connection is close"
	reasonRoomNotFound     = "cannot find room"
)

// classifyClose maps a server close frame onto the next connection state.
func classifyClose(code websocket.StatusCode, reason string) StateChange {
	change := StateChange{
		State:  entity.ClosedTerminal,
		Code:   int(code),
		Reason: reason,
	}

	switch {
	case code == websocket.StatusPolicyViolation:
		change.State = entity.ClosedPasswordRequired
		change.Err = fmt.Errorf("%w: %s", apperror.ErrPolicyClosed, reason)
	case code == websocket.StatusTryAgainLater,
		reason == reasonConnectionClosed,
		reason == reasonRoomNotFound:
		change.Leave = true
		change.Err = fmt.Errorf("%w: %d %s", apperror.ErrPeerClosed, code, reason)
	}

	return change
}
