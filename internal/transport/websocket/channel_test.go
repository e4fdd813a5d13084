package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type recordingListener struct {
	messages chan Inbound
	changes  chan StateChange
}

func newRecordingListener() *recordingListener {
	return &recordingListener{
		messages: make(chan Inbound, 16),
		changes:  make(chan StateChange, 16),
	}
}

func (that *recordingListener) OnMessage(msg Inbound) {
	that.messages <- msg
}

func (that *recordingListener) OnStateChange(change StateChange) {
	that.changes <- change
}

func (that *recordingListener) nextChange(t *testing.T) StateChange {
	t.Helper()

	select {
	case change := <-that.changes:
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("no state change")
		return StateChange{}
	}
}

type roomScript func(ctx context.Context, conn *websocket.Conn)

// startRoom serves one websocket room. hello receives the greeting and the request header.
func startRoom(t *testing.T, script roomScript) (string, chan map[string]any, chan http.Header) {
	t.Helper()

	hello := make(chan map[string]any, 1)
	headers := make(chan http.Header, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		var greeting map[string]any
		if err := wsjson.Read(r.Context(), conn, &greeting); err != nil {
			return
		}
		hello <- greeting

		script(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	roomURL, err := RoomURL(srv.URL, 42, "secret")
	require.NoError(t, err)

	return roomURL, hello, headers
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoomURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/rooms/7?token=tok"},
		{"https://example.com/api/", "wss://example.com/api/rooms/7?token=tok"},
		{"ws://host", "ws://host/rooms/7?token=tok"},
	}

	for _, tt := range tests {
		got, err := RoomURL(tt.base, 7, "tok")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := RoomURL("ftp://host", 7, "tok")
	assert.Error(t, err)
}

func TestChannel_ConnectSendsGreeting(t *testing.T) {
	// Given:
	roomURL, hello, headers := startRoom(t, func(ctx context.Context, conn *websocket.Conn) {
		conn.Close(websocket.StatusNormalClosure, "bye")
	})
	listener := newRecordingListener()
	channel := New(discardLogger(), roomURL, "secret", listener)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// When:
	err := channel.Connect(ctx, "")

	// Then:
	require.NoError(t, err)
	assert.Equal(t, entity.Open, listener.nextChange(t).State)
	assert.Equal(t, map[string]any{"action": "new connection to room", "password": ""}, <-hello)
	assert.Equal(t, "Bearer secret", (<-headers).Get("Authorization"))

	err = channel.Run(ctx)
	assert.NoError(t, err)

	change := listener.nextChange(t)
	assert.Equal(t, entity.ClosedTerminal, change.State)
	assert.False(t, change.Leave)
	assert.Equal(t, "bye", change.Reason)
}

func TestChannel_DispatchesMessagesAndDropsBadOnes(t *testing.T) {
	// Given:
	roomURL, _, _ := startRoom(t, func(ctx context.Context, conn *websocket.Conn) {
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"action":"dance"}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"action":"resize","size":-1}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"action":"resize","size":4}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"action":"reset game"}`))
		conn.Close(websocket.StatusNormalClosure, "")
	})
	listener := newRecordingListener()
	channel := New(discardLogger(), roomURL, "secret", listener)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// When:
	require.NoError(t, channel.Connect(ctx, "pw"))
	_ = channel.Run(ctx)

	// Then:
	require.Len(t, listener.messages, 2)
	assert.Equal(t, Resize{Size: 4}, <-listener.messages)
	assert.Equal(t, ResetGame{}, <-listener.messages)
}

func TestChannel_CloseCodes(t *testing.T) {
	tests := []struct {
		name      string
		code      websocket.StatusCode
		reason    string
		wantState entity.ConnectionState
		wantLeave bool
		wantErr   error
	}{
		{"policy violation asks for password", websocket.StatusPolicyViolation, "password is not valid", entity.ClosedPasswordRequired, false, apperror.ErrPolicyClosed},
		{"room is full", websocket.StatusTryAgainLater, "room is full", entity.ClosedTerminal, true, apperror.ErrPeerClosed},
		{"room closed", websocket.StatusNormalClosure, "connection is close", entity.ClosedTerminal, true, apperror.ErrPeerClosed},
		{"room gone", websocket.StatusNormalClosure, "cannot find room", entity.ClosedTerminal, true, apperror.ErrPeerClosed},
		{"anything else", websocket.StatusGoingAway, "restarting", entity.ClosedTerminal, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given:
			roomURL, _, _ := startRoom(t, func(ctx context.Context, conn *websocket.Conn) {
				conn.Close(tt.code, tt.reason)
			})
			listener := newRecordingListener()
			channel := New(discardLogger(), roomURL, "secret", listener)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			require.NoError(t, channel.Connect(ctx, ""))
			listener.nextChange(t)

			// When:
			err := channel.Run(ctx)

			// Then:
			change := listener.nextChange(t)
			assert.Equal(t, tt.wantState, change.State)
			assert.Equal(t, tt.wantLeave, change.Leave)
			assert.Equal(t, int(tt.code), change.Code)
			assert.Equal(t, tt.wantState, channel.State())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChannel_DialFailureIsTerminal(t *testing.T) {
	// Given:
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	roomURL, err := RoomURL(srv.URL, 1, "secret")
	require.NoError(t, err)

	listener := newRecordingListener()
	channel := New(discardLogger(), roomURL, "secret", listener)

	// When:
	err = channel.Connect(context.Background(), "")

	// Then:
	require.ErrorIs(t, err, apperror.ErrHandshakeFailed)
	change := listener.nextChange(t)
	assert.Equal(t, entity.ClosedTerminal, change.State)
	assert.True(t, change.Leave)
}

func TestChannel_SendAfterCloseFails(t *testing.T) {
	// Given:
	roomURL, _, _ := startRoom(t, func(ctx context.Context, conn *websocket.Conn) {
		_, _, _ = conn.Read(ctx)
	})
	listener := newRecordingListener()
	channel := New(discardLogger(), roomURL, "secret", listener)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, channel.Connect(ctx, ""))

	// When:
	_ = channel.Close()
	err := channel.Send(ctx, ResetGameMessage())

	// Then:
	assert.ErrorIs(t, err, apperror.ErrChannelClosed)
	assert.Equal(t, entity.ClosedTerminal, channel.State())
}

func TestChannel_SendBeforeConnectFails(t *testing.T) {
	channel := New(discardLogger(), "ws://unused", "", newRecordingListener())

	err := channel.Send(context.Background(), ResetGameMessage())

	assert.ErrorIs(t, err, apperror.ErrChannelClosed)
	assert.Equal(t, entity.Connecting, channel.State())
}
