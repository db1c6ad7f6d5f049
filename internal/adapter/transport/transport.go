// Package transport owns the single realtime WebSocket connection to the
// cloud: connect, authentication handshake, send path, receive loop, and
// graceful shutdown.
package transport

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"webexbot/internal/domain"
)

const defaultCloseTimeout = 5 * time.Second

// authFrame is the first frame sent after connect. No ack is awaited.
type authFrame struct {
	ID   string   `json:"id"` // fresh correlation identifier per handshake
	Type string   `json:"type"`
	Data authData `json:"data"`
}

type authData struct {
	Token string `json:"token"`
}

// TextHandler receives the payload of each inbound Text frame.
type TextHandler func(payload string)

// Transport holds at most one open connection at a time. Send and Listen
// are only valid once the authorization frame has been sent; calls in any
// other state report an error instead of blocking or crashing. Cancellation
// is cooperative: the context handed to Listen is checked every iteration,
// so the loop exits promptly even against a dead peer.
type Transport struct {
	token        string
	closeTimeout time.Duration
	logger       *slog.Logger

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
}

// Option configures the Transport.
type Option func(*Transport)

// WithCloseTimeout bounds the wait for the peer's Close acknowledgement.
func WithCloseTimeout(d time.Duration) Option {
	return func(t *Transport) { t.closeTimeout = d }
}

// New creates a disconnected Transport for the given bearer credential.
func New(token string, logger *slog.Logger, opts ...Option) *Transport {
	t := &Transport{
		token:        token,
		closeTimeout: defaultCloseTimeout,
		logger:       logger,
		state:        StateDisconnected,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// State returns the current lifecycle state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Connect opens the socket and sends the authorization frame. The URL
// scheme selects plain (ws) or TLS via the platform trust store (wss).
// Valid only from the disconnected state.
func (t *Transport) Connect(ctx context.Context, endpointURL string) error {
	const op = "Transport.Connect"

	t.mu.Lock()
	if t.state != StateDisconnected {
		t.mu.Unlock()
		return domain.NewDomainError(op, domain.ErrNotReady,
			"connect is only valid from the disconnected state")
	}
	t.state = StateConnecting
	t.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, endpointURL, nil)
	if err != nil {
		t.setState(StateClosed)
		return domain.NewDomainError(op, domain.ErrConnectFailed, err.Error())
	}

	t.mu.Lock()
	t.conn = conn
	t.state = StateAuthenticating
	t.mu.Unlock()

	frame := authFrame{ID: uuid.NewString(), Type: "authorization"}
	frame.Data.Token = "Bearer " + t.token
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		conn.Close(websocket.StatusInternalError, "authorization write failed")
		t.setState(StateClosed)
		return domain.NewDomainError(op, domain.ErrConnectFailed, err.Error())
	}

	// Fire-and-continue: the cloud does not acknowledge the authorization
	// frame, so the transport is ready as soon as it is written.
	t.setState(StateListening)
	t.logger.Info("realtime transport connected", "endpoint", endpointURL)
	return nil
}

// Send writes one Text frame. Valid only once authenticated.
func (t *Transport) Send(ctx context.Context, text string) error {
	const op = "Transport.Send"

	t.mu.Lock()
	if t.state != StateListening {
		t.mu.Unlock()
		return domain.NewDomainError(op, domain.ErrNotReady,
			"send requires an authenticated connection")
	}
	conn := t.conn
	t.mu.Unlock()

	return domain.WrapOp(op, conn.Write(ctx, websocket.MessageText, []byte(text)))
}

// Listen runs the receive loop until ctx is cancelled, a Close frame
// arrives, or the stream errors. Each inbound Text frame is handed to
// onText; Binary frames are logged and ignored, and the library answers
// Ping/Pong control frames internally. A stream-read error surfaces as
// ErrPeerAway; cancellation and a peer Close are clean exits.
func (t *Transport) Listen(ctx context.Context, onText TextHandler) error {
	const op = "Transport.Listen"

	t.mu.Lock()
	if t.state != StateListening {
		t.mu.Unlock()
		return domain.NewDomainError(op, domain.ErrNotReady,
			"listen requires an authenticated connection")
	}
	conn := t.conn
	t.mu.Unlock()

	for {
		if ctx.Err() != nil {
			t.logger.Debug("listen loop cancelled")
			return nil
		}

		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.logger.Debug("listen loop cancelled")
				return nil
			}
			if status := websocket.CloseStatus(err); status != -1 {
				t.logger.Warn("close frame received", "status", int(status))
				t.finishPeerClose(conn)
				return nil
			}
			t.setState(StateClosed)
			return domain.NewDomainError(op, domain.ErrPeerAway, err.Error())
		}

		switch typ {
		case websocket.MessageText:
			t.logger.Debug("text frame received", "bytes", len(data))
			if onText != nil {
				onText(string(data))
			}
		default:
			t.logger.Debug("non-text frame ignored", "type", int(typ))
		}
	}
}

// Close gracefully shuts the connection down: it sends a Close frame and
// waits for the peer's acknowledgement, bounded by the close timeout so an
// unresponsive peer cannot block shutdown indefinitely. No-op unless the
// transport is listening.
func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateListening {
		t.mu.Unlock()
		return nil
	}
	t.state = StateClosing
	conn := t.conn
	t.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- conn.Close(websocket.StatusNormalClosure, "shutting down") }()

	select {
	case err := <-done:
		if err != nil {
			t.logger.Debug("close handshake ended with error", "error", err)
		}
	case <-time.After(t.closeTimeout):
		t.logger.Warn("peer did not acknowledge close in time")
		conn.CloseNow()
	case <-ctx.Done():
		conn.CloseNow()
	}

	t.mu.Lock()
	t.state = StateClosed
	t.conn = nil
	t.mu.Unlock()

	t.logger.Info("realtime transport closed")
	return nil
}

// finishPeerClose completes a peer-initiated close: the library has already
// answered the Close frame, so only the socket release and the state walk
// to closed remain.
func (t *Transport) finishPeerClose(conn *websocket.Conn) {
	t.mu.Lock()
	if t.state == StateListening {
		t.state = StateClosing
	}
	t.state = StateClosed
	t.conn = nil
	t.mu.Unlock()
	conn.CloseNow()
}

func (t *Transport) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
