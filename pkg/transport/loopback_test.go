package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

func batteryGet(node uint16) Envelope {
	return Envelope{NodeID: node, Frame: wire.NewFrame(wire.ClassBattery, 0x02, nil)}
}

func TestLoopbackResponds(t *testing.T) {
	lb := NewLoopback(func(env Envelope) []Envelope {
		return []Envelope{{
			NodeID:   env.NodeID,
			Endpoint: env.Endpoint,
			Frame:    wire.NewFrame(wire.ClassBattery, 0x03, []byte{0x50}),
		}}
	})
	defer lb.Close()

	require.NoError(t, lb.Send(context.Background(), batteryGet(4)))

	select {
	case env := <-lb.Inbound():
		assert.Equal(t, uint16(4), env.NodeID)
		assert.True(t, env.Frame.Is(wire.ClassBattery, 0x03))
	case <-time.After(time.Second):
		t.Fatal("no reply")
	}
	assert.Len(t, lb.Sent(), 1)
}

func TestLoopbackInject(t *testing.T) {
	lb := NewLoopback(nil)
	defer lb.Close()

	env := Envelope{NodeID: 9, Frame: wire.NewFrame(wire.ClassSwitchBinary, 0x03, []byte{0xFF})}
	require.NoError(t, lb.Inject(context.Background(), env))
	got := <-lb.Inbound()
	assert.Equal(t, uint16(9), got.NodeID)
}

func TestLoopbackClose(t *testing.T) {
	lb := NewLoopback(nil)
	require.NoError(t, lb.Close())
	require.NoError(t, lb.Close())

	err := lb.Send(context.Background(), batteryGet(1))
	assert.True(t, errors.Is(err, ErrDriverClosed))

	_, ok := <-lb.Inbound()
	assert.False(t, ok, "inbound should be closed")
}

func TestLoopbackFullInboundHonoursContext(t *testing.T) {
	lb := NewLoopback(nil)
	defer lb.Close()

	for range InboundBufferSize {
		require.NoError(t, lb.Inject(context.Background(), batteryGet(1)))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := lb.Inject(ctx, batteryGet(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
