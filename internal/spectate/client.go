// Package spectate follows a game's event stream over WebSocket, reconnecting
// with exponential backoff when the connection drops.
package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 1 * time.Minute
	reconnectBackoffFactor = 2

	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Update is one message of the event stream.
type Update struct {
	GameID string          `json:"gameId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// Handler is called for each update, pongs excluded.
type Handler func(update Update) error

// Client watches one game.
type Client struct {
	url            string
	handler        Handler
	logger         zerolog.Logger
	dialer         *websocket.Dialer
	reconnectDelay time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
}

type Option func(*Client)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces the default WebSocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithInitialReconnectDelay sets the initial reconnect delay
func WithInitialReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelay = delay
	}
}

// StreamURL builds the stream URL of gameID from the server's base URL
// (http or https). A seat token is optional.
func StreamURL(base, gameID, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/ws"
	q := url.Values{}
	q.Set("gameId", gameID)
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func NewClient(streamURL string, handler Handler, opts ...Option) *Client {
	c := &Client{
		url:            streamURL,
		handler:        handler,
		logger:         zerolog.Nop(),
		dialer:         websocket.DefaultDialer,
		reconnectDelay: initialReconnectDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Run follows the stream until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	delay := c.reconnectDelay
	for {
		err := c.connect(ctx)
		if err == nil {
			delay = c.reconnectDelay
			err = c.listen(ctx)
		}
		c.disconnect()
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Error().Err(err).Str("delay", delay.String()).Msg("Stream interrupted, reconnecting")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
		delay *= reconnectBackoffFactor
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	c.logger.Info().Str("url", c.url).Msg("Connecting to game stream")

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	headers := http.Header{}
	headers.Set("User-Agent", "hidetheking-watch/1.0")
	conn, resp, err := c.dialer.DialContext(dialCtx, c.url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to game stream")
	return nil
}

func (c *Client) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

func (c *Client) listen(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	done := make(chan struct{})
	defer close(done)
	go c.pingLoop(conn, done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read error: %w", err)
		}
		// keep-alive traffic also counts as liveness
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		var update Update
		if err := json.Unmarshal(data, &update); err != nil {
			c.logger.Error().Err(err).Msg("Failed to decode update")
			continue
		}
		if update.Type == "pong" {
			continue
		}
		if err := c.handler(update); err != nil {
			c.logger.Error().Err(err).Str("type", update.Type).Msg("Update handler error")
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				c.logger.Error().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}
