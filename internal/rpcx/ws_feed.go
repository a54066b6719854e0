package rpcx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// FeedConfig configures WebSocket feed behavior.
type FeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LaunchLog is one logsNotification for the watched launch program.
type LaunchLog struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}

// LaunchFeed subscribes to program logs over WebSocket and delivers launch
// notifications. The connection reconnects with exponential backoff and
// resubscribes transparently.
type LaunchFeed struct {
	endpoint string
	program  string // program ID whose logs are watched
	config   FeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	requestID    atomic.Uint64
	out          chan LaunchLog
	reconnecting atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewLaunchFeed connects and subscribes to logs mentioning program.
func NewLaunchFeed(ctx context.Context, endpoint, program string, config *FeedConfig) (*LaunchFeed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &LaunchFeed{
		endpoint: endpoint,
		program:  program,
		config:   cfg,
		out:      make(chan LaunchLog, 10000),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}
	if err := f.subscribe(); err != nil {
		f.Close()
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// Events returns the notification channel. Closed when the feed closes.
func (f *LaunchFeed) Events() <-chan LaunchLog {
	return f.out
}

// connect establishes the WebSocket connection.
func (f *LaunchFeed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// subscribe sends the logsSubscribe request for the watched program.
// Confirmation arrives asynchronously in readLoop and is discarded; the
// server starts streaming once it processes the request.
func (f *LaunchFeed) subscribe() error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      f.requestID.Add(1),
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{f.program}},
			map[string]string{"commitment": "processed"},
		},
	}

	f.connMu.Lock()
	defer f.connMu.Unlock()

	if f.conn == nil {
		return fmt.Errorf("not connected")
	}
	f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	if err := f.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the feed and its notification channel.
func (f *LaunchFeed) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.out)
	return nil
}

// readLoop reads messages and dispatches launch notifications.
func (f *LaunchFeed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			if !f.reconnecting.Swap(true) {
				go f.reconnect(reconnectDelay)
			}

			reconnectDelay *= 2
			if reconnectDelay > f.config.MaxReconnectDelay {
				reconnectDelay = f.config.MaxReconnectDelay
			}

			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = f.config.ReconnectDelay
		f.handleMessage(message)
	}
}

// reconnect re-establishes the connection and resubscribes.
func (f *LaunchFeed) reconnect(delay time.Duration) {
	defer f.reconnecting.Store(false)

	if f.closed.Load() {
		return
	}

	select {
	case <-f.done:
		return
	case <-time.After(delay):
	}

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		// Will retry on next read error.
		return
	}

	_ = f.subscribe()
}

// pingLoop keeps the connection alive.
func (f *LaunchFeed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				f.conn.WriteMessage(websocket.PingMessage, nil)
			}
			f.connMu.Unlock()
		}
	}
}

// wsRequest represents a JSON-RPC 2.0 WebSocket request.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsNotification is the envelope of a logsNotification message.
type wsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Logs      []string    `json:"logs"`
				Err       interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// handleMessage parses one message and forwards launch notifications.
func (f *LaunchFeed) handleMessage(message []byte) {
	var note wsNotification
	if err := json.Unmarshal(message, &note); err != nil {
		return
	}
	if note.Method != "logsNotification" {
		// Subscription confirmations and pongs land here.
		return
	}

	event := LaunchLog{
		Signature: note.Params.Result.Value.Signature,
		Slot:      note.Params.Result.Context.Slot,
		Logs:      note.Params.Result.Value.Logs,
		Err:       note.Params.Result.Value.Err,
	}

	select {
	case f.out <- event:
	case <-f.done:
	}
}
