package transport

import (
	"context"
	"net"
	"sync"
	"time"
)

// StreamConfig configures a StreamDriver.
type StreamConfig struct {
	LinkConfig

	// Address is the gateway host:port.
	Address string

	// MaxMessageSize defaults to DefaultMaxMessageSize.
	MaxMessageSize uint32

	// Dial defaults to a net.Dialer over TCP.
	Dial func(ctx context.Context, address string) (net.Conn, error)
}

// DefaultStreamConfig returns a config for a TCP gateway at address.
func DefaultStreamConfig(address string) StreamConfig {
	return StreamConfig{
		LinkConfig:     DefaultLinkConfig(),
		Address:        address,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// StreamDriver exchanges length-prefixed envelopes over a byte stream.
type StreamDriver struct {
	*linkDriver
	cfg StreamConfig
}

// NewStreamDriver creates a driver. Call Connect to dial.
func NewStreamDriver(cfg StreamConfig) *StreamDriver {
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if cfg.Dial == nil {
		var dialer net.Dialer
		cfg.Dial = func(ctx context.Context, address string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", address)
		}
	}
	d := &StreamDriver{cfg: cfg}
	d.linkDriver = newLinkDriver(cfg.LinkConfig, d.dial)
	return d
}

func (d *StreamDriver) dial(ctx context.Context) (link, error) {
	conn, err := d.cfg.Dial(ctx, d.cfg.Address)
	if err != nil {
		return nil, err
	}
	return &streamLink{
		conn:   conn,
		reader: NewFrameReaderWithMaxSize(conn, d.cfg.MaxMessageSize),
		writer: NewFrameWriterWithMaxSize(conn, d.cfg.MaxMessageSize),
	}, nil
}

type streamLink struct {
	conn   net.Conn
	reader *FrameReader
	writer *FrameWriter

	writeMu sync.Mutex
}

func (l *streamLink) ReadMessage() ([]byte, error) {
	return l.reader.ReadFrame()
}

func (l *streamLink) WriteMessage(ctx context.Context, b []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := l.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	defer l.conn.SetWriteDeadline(time.Time{})
	return l.writer.WriteFrame(b)
}

func (l *streamLink) Close() error {
	return l.conn.Close()
}
