package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// Listener receives decoded messages and state transitions from a Channel.
// Calls come from the goroutine running Connect or Run and must not block for long.
type Listener interface {
	OnMessage(msg Inbound)
	OnStateChange(change StateChange)
}

// Channel is a single realtime connection to a room. Once closed it stays closed;
// reconnecting means building a new Channel.
type Channel struct {
	logger   *slog.Logger
	url      string
	token    string
	listener Listener

	mu    sync.Mutex
	state entity.ConnectionState
	conn  *websocket.Conn
}

func New(logger *slog.Logger, roomURL, token string, listener Listener) *Channel {
	return &Channel{
		logger:   logger.With("component", "channel"),
		url:      roomURL,
		token:    token,
		listener: listener,
		state:    entity.Connecting,
	}
}

// RoomURL builds the channel address {base with http→ws}/rooms/{id}?token=...
func RoomURL(baseURL string, roomID uint64, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}

	u.Path += "/rooms/" + strconv.FormatUint(roomID, 10)

	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func (that *Channel) State() entity.ConnectionState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

// Connect dials the room and greets it with the password. The password is sent even when empty.
func (that *Channel) Connect(ctx context.Context, password string) error {
	log := that.logger.With("method", "Connect")

	header := http.Header{}
	if that.token != "" {
		header.Set("Authorization", "Bearer "+that.token)
	}

	conn, _, err := websocket.Dial(ctx, that.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		err = fmt.Errorf("%w: %w", apperror.ErrHandshakeFailed, err)
		log.Error("failed to dial room", "error", err)
		that.transition(StateChange{State: entity.ClosedTerminal, Leave: true, Err: err})
		return err
	}

	that.mu.Lock()
	that.conn = conn
	that.mu.Unlock()

	if !that.transition(StateChange{State: entity.Open}) {
		conn.CloseNow()
		return apperror.ErrChannelClosed
	}

	log.Info("connected to room")

	if err := that.Send(ctx, NewConnectionMessage(password)); err != nil {
		that.transition(StateChange{State: entity.ClosedTerminal, Leave: true, Err: err})
		conn.CloseNow()
		return err
	}

	return nil
}

// Run reads frames until the connection closes and returns the closing error, if any.
func (that *Channel) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	if conn == nil {
		return apperror.ErrChannelClosed
	}

	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			change := that.readFailure(ctx, err)
			if change.Err != nil {
				log.Warn("connection closed", "code", change.Code, "reason", change.Reason, "error", change.Err)
			} else {
				log.Info("connection closed", "code", change.Code, "reason", change.Reason)
			}

			that.transition(change)
			conn.CloseNow()

			return change.Err
		}

		msg, err := Decode(raw)
		if err != nil {
			if errors.Is(err, apperror.ErrUnknownAction) {
				log.Debug("ignoring message", "error", err)
			} else {
				log.Warn("dropping message", "error", err)
			}
			continue
		}

		that.listener.OnMessage(msg)
	}
}

func (that *Channel) readFailure(ctx context.Context, err error) StateChange {
	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		return classifyClose(closeErr.Code, closeErr.Reason)
	}

	if ctx.Err() != nil {
		return StateChange{State: entity.ClosedTerminal, Err: ctx.Err()}
	}

	return StateChange{
		State: entity.ClosedTerminal,
		Leave: true,
		Err:   fmt.Errorf("%w: %w", apperror.ErrPeerClosed, err),
	}
}

// Send writes one message. It fails with ErrChannelClosed unless the channel is open.
func (that *Channel) Send(ctx context.Context, msg Outbound) error {
	that.mu.Lock()
	conn, state := that.conn, that.state
	that.mu.Unlock()

	if state != entity.Open || conn == nil {
		return fmt.Errorf("%w: send %q", apperror.ErrChannelClosed, msg.Action())
	}

	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", msg.Action(), err)
	}

	return nil
}

// Close closes the connection normally.
func (that *Channel) Close() error {
	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	that.transition(StateChange{State: entity.ClosedTerminal, Code: int(websocket.StatusNormalClosure)})

	if conn == nil {
		return nil
	}

	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

// transition moves to change.State and notifies the listener. Closed states are final.
func (that *Channel) transition(change StateChange) bool {
	that.mu.Lock()
	if that.state.IsClosed() || that.state == change.State {
		that.mu.Unlock()
		return false
	}
	that.state = change.State
	that.mu.Unlock()

	that.listener.OnStateChange(change)

	return true
}
