package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gridpoint/facilitymap-core/internal/infrastructure/config"
)

// Topic carried by every asset delta frame.
const TopicUpdateAsset = "updateAsset"

// Sentinel errors.
var (
	ErrNotConnected = errors.New("socket: not connected")
	ErrClosed       = errors.New("socket: connection closed")
)

// State is the connection lifecycle state.
type State int32

// Connection states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Message is one live-update frame. Every client, including the one
// that originated a mutation, receives the delta and applies it.
type Message struct {
	Topic   string            `json:"topic"`
	Type    string            `json:"type"`
	AssetID int               `json:"assetId"`
	Props   map[string]string `json:"props"`
}

// Validate checks the frame carries the update topic and an asset
// reference.
func (m Message) Validate() error {
	if m.Topic != TopicUpdateAsset {
		return fmt.Errorf("unexpected topic %q", m.Topic)
	}
	if m.Type == "" || m.AssetID == 0 {
		return errors.New("missing type or assetId")
	}
	return nil
}

// Logger is the minimal logging surface the connection needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Connection is a self-healing client connection to the live-update
// socket. On any close it redials after a fixed delay, forever, until
// Close or context cancellation. Messages missed while disconnected are
// gone; there is no replay.
//
// Thread Safety: all methods are safe for concurrent use.
type Connection struct {
	url      string
	delay    time.Duration
	maxSize  int64
	clientID string
	logger   Logger
	dialer   *websocket.Dialer

	mu      sync.RWMutex
	conn    *websocket.Conn
	state   State
	handler func(Message)

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewConnection builds a connection from configuration. Nothing is
// dialled until Connect.
func NewConnection(cfg config.SocketConfig, logger Logger) *Connection {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Connection{
		url:      cfg.URL,
		delay:    cfg.GetReconnectDelay(),
		maxSize:  int64(cfg.MaxMessageSize),
		clientID: uuid.NewString(),
		logger:   logger,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		done: make(chan struct{}),
	}
}

// ClientID identifies this connection across reconnects.
func (c *Connection) ClientID() string {
	return c.clientID
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnMessage registers the inbound delta handler. Register before
// Connect; frames arriving with no handler are dropped.
func (c *Connection) OnMessage(fn func(Message)) {
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// Connect starts the dial/read/redial loop in the background and
// returns immediately. The loop stops when ctx is cancelled or Close is
// called.
func (c *Connection) Connect(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Send writes one delta frame. Fails fast when disconnected; the caller
// decides whether the loss matters.
func (c *Connection) Send(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("socket: encode message: %w", err)
	}

	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()

	if state != StateConnected || conn == nil {
		return ErrNotConnected
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("socket: write: %w", err)
	}
	return nil
}

// Close tears the connection down and stops the reconnect loop.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
	c.wg.Wait()
	return nil
}

func (c *Connection) run(ctx context.Context) {
	defer c.wg.Done()
	defer c.setState(StateDisconnected, nil)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		c.setState(StateConnecting, nil)
		conn, _, err := c.dialer.DialContext(ctx, c.url+"?client="+c.clientID, nil)
		if err != nil {
			c.logger.Warn("socket dial failed", "url", c.url, "error", err)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		if c.maxSize > 0 {
			conn.SetReadLimit(c.maxSize)
		}
		c.setState(StateConnected, conn)
		c.logger.Info("socket connected", "url", c.url)

		c.readLoop(conn)

		c.setState(StateDisconnected, nil)
		conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
			c.logger.Warn("socket disconnected, reconnecting", "delay", c.delay)
			if !c.sleep(ctx) {
				return
			}
		}
	}
}

// readLoop delivers inbound frames until the connection errors.
// Malformed frames are dropped with a warning; the connection stays
// open.
func (c *Connection) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping malformed socket frame", "error", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			c.logger.Warn("dropping invalid socket frame", "error", err)
			continue
		}

		c.mu.RLock()
		handler := c.handler
		c.mu.RUnlock()

		if handler != nil {
			handler(msg)
		}
	}
}

func (c *Connection) setState(s State, conn *websocket.Conn) {
	c.mu.Lock()
	c.state = s
	c.conn = conn
	c.mu.Unlock()
}

// sleep waits out the reconnect delay. Returns false when the loop
// should stop instead of redialling.
func (c *Connection) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	case <-t.C:
		return true
	}
}
