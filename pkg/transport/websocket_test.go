package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// echoGateway answers every Battery Get with a Battery Report for the same node.
func echoGateway(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// A text message must be ignored by the driver.
		conn.WriteMessage(websocket.TextMessage, []byte("hello"))

		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := ParseEnvelope(b)
			if err != nil {
				continue
			}
			reply := Envelope{NodeID: env.NodeID, Frame: wire.NewFrame(wire.ClassBattery, 0x03, []byte{0xFF})}
			if err := conn.WriteMessage(websocket.BinaryMessage, reply.Bytes()); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketDriver(t *testing.T) {
	srv := echoGateway(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	d := NewWebSocketDriver(DefaultWebSocketConfig(url))
	defer d.Close()

	require.NoError(t, d.Connect(context.Background()))
	require.NoError(t, d.Send(context.Background(), batteryGet(12)))

	env := recv(t, d)
	assert.Equal(t, uint16(12), env.NodeID)
	assert.True(t, env.Frame.Is(wire.ClassBattery, 0x03))
	assert.Equal(t, []byte{0xFF}, env.Frame.Params())
}

func TestWebSocketDriverHandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d := NewWebSocketDriver(DefaultWebSocketConfig("ws" + strings.TrimPrefix(srv.URL, "http")))
	defer d.Close()

	err := d.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
