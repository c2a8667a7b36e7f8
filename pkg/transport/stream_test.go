package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcc/meshcc-go/pkg/connection"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

// pipeGateway hands the driver one end of a net.Pipe per dial and keeps
// the other end for the test.
type pipeGateway struct {
	conns chan net.Conn
}

func newPipeGateway() *pipeGateway {
	return &pipeGateway{conns: make(chan net.Conn, 4)}
}

func (g *pipeGateway) dial(context.Context, string) (net.Conn, error) {
	client, server := net.Pipe()
	g.conns <- server
	return client, nil
}

func (g *pipeGateway) next(t *testing.T) *Framer {
	t.Helper()
	select {
	case c := <-g.conns:
		t.Cleanup(func() { c.Close() })
		return NewFramer(c)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not dial")
		return nil
	}
}

func newTestStreamDriver(g *pipeGateway) *StreamDriver {
	cfg := DefaultStreamConfig("gateway:4123")
	cfg.Dial = g.dial
	cfg.Reconnect.Backoff = connection.BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond}
	return NewStreamDriver(cfg)
}

func recv(t *testing.T, d Driver) Envelope {
	t.Helper()
	select {
	case env := <-d.Inbound():
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound envelope")
		return Envelope{}
	}
}

func TestStreamDriverExchange(t *testing.T) {
	g := newPipeGateway()
	d := newTestStreamDriver(g)
	defer d.Close()

	require.NoError(t, d.Connect(context.Background()))
	gw := g.next(t)
	assert.Equal(t, connection.StateConnected, d.State())

	// Gateway to controller.
	report := Envelope{NodeID: 5, Frame: wire.NewFrame(wire.ClassBattery, 0x03, []byte{0x50})}
	go gw.WriteFrame(report.Bytes())
	got := recv(t, d)
	assert.Equal(t, uint16(5), got.NodeID)
	assert.Equal(t, []byte{0x50}, got.Frame.Params())

	// Controller to gateway.
	done := make(chan []byte, 1)
	go func() {
		b, _ := gw.ReadFrame()
		done <- b
	}()
	require.NoError(t, d.Send(context.Background(), batteryGet(5)))
	assert.Equal(t, []byte{0x00, 0x05, 0x00, 0x80, 0x02}, <-done)
}

func TestStreamDriverSkipsMalformed(t *testing.T) {
	g := newPipeGateway()
	d := newTestStreamDriver(g)
	defer d.Close()

	require.NoError(t, d.Connect(context.Background()))
	gw := g.next(t)

	go func() {
		gw.WriteFrame([]byte{0x00, 0x05})
		gw.WriteFrame(batteryGet(6).Bytes())
	}()
	assert.Equal(t, uint16(6), recv(t, d).NodeID)
}

func TestStreamDriverReconnects(t *testing.T) {
	g := newPipeGateway()
	d := newTestStreamDriver(g)
	defer d.Close()

	require.NoError(t, d.Connect(context.Background()))
	first := g.next(t)
	first.FrameReader.r.(net.Conn).Close()

	second := g.next(t)
	require.Eventually(t, func() bool { return d.State() == connection.StateConnected }, 2*time.Second, time.Millisecond)

	go second.WriteFrame(batteryGet(7).Bytes())
	assert.Equal(t, uint16(7), recv(t, d).NodeID)
}

func TestStreamDriverNotConnected(t *testing.T) {
	d := newTestStreamDriver(newPipeGateway())
	defer d.Close()

	err := d.Send(context.Background(), batteryGet(1))
	assert.ErrorIs(t, err, connection.ErrNotConnected)
}

func TestStreamDriverClose(t *testing.T) {
	g := newPipeGateway()
	d := newTestStreamDriver(g)
	require.NoError(t, d.Connect(context.Background()))
	g.next(t)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Send(context.Background(), batteryGet(1)), ErrDriverClosed)

	_, ok := <-d.Inbound()
	assert.False(t, ok)
}
