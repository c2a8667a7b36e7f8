package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConfig configures a WebSocketDriver.
type WebSocketConfig struct {
	LinkConfig

	// URL is the gateway endpoint, e.g. ws://gateway.local:8080/cc.
	URL string

	// Header is sent with the handshake.
	Header http.Header

	// HandshakeTimeout defaults to 10s.
	HandshakeTimeout time.Duration

	// MaxMessageSize defaults to DefaultMaxMessageSize.
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns a config for a gateway at url.
func DefaultWebSocketConfig(url string) WebSocketConfig {
	return WebSocketConfig{
		LinkConfig:       DefaultLinkConfig(),
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   DefaultMaxMessageSize,
	}
}

// WebSocketDriver exchanges one envelope per binary WebSocket message.
type WebSocketDriver struct {
	*linkDriver
	cfg    WebSocketConfig
	dialer *websocket.Dialer
}

// NewWebSocketDriver creates a driver. Call Connect to dial.
func NewWebSocketDriver(cfg WebSocketConfig) *WebSocketDriver {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	d := &WebSocketDriver{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
	d.linkDriver = newLinkDriver(cfg.LinkConfig, d.dial)
	return d
}

func (d *WebSocketDriver) dial(ctx context.Context) (link, error) {
	conn, resp, err := d.dialer.DialContext(ctx, d.cfg.URL, d.cfg.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake: %s: %w", resp.Status, err)
		}
		return nil, err
	}
	conn.SetReadLimit(d.cfg.MaxMessageSize)
	return &wsLink{conn: conn}, nil
}

type wsLink struct {
	conn *websocket.Conn

	// gorilla connections allow one concurrent writer.
	writeMu sync.Mutex
}

func (l *wsLink) ReadMessage() ([]byte, error) {
	for {
		typ, b, err := l.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ == websocket.BinaryMessage {
			return b, nil
		}
	}
}

func (l *wsLink) WriteMessage(ctx context.Context, b []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := l.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.BinaryMessage, b)
}

func (l *wsLink) Close() error {
	l.writeMu.Lock()
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	l.writeMu.Unlock()
	return l.conn.Close()
}
