package discovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meshcc/meshcc-go/pkg/discovery"
	"github.com/meshcc/meshcc-go/pkg/discovery/mocks"
)

func gateway(name string, homeID uint32, tp discovery.Transport) *discovery.GatewayService {
	return &discovery.GatewayService{
		InstanceName: name,
		Port:         discovery.DefaultPort,
		GatewayInfo:  discovery.GatewayInfo{HomeID: homeID, Version: "1", Transport: tp},
	}
}

func TestDiscover(t *testing.T) {
	browser := mocks.NewMockBrowser(t)

	added := make(chan *discovery.GatewayService, 3)
	added <- gateway("a", 1, discovery.TransportTCP)
	added <- gateway("b", 2, discovery.TransportWebSocket)
	added <- gateway("c", 1, discovery.TransportWebSocket)
	close(added)

	browser.EXPECT().Browse(mock.Anything).
		Return((<-chan *discovery.GatewayService)(added), nil, nil).Once()
	browser.EXPECT().Stop().Once()

	got, err := discovery.Discover(context.Background(), browser, discovery.FilterByHomeID(1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].InstanceName)
	assert.Equal(t, "c", got[1].InstanceName)
}

func TestDiscoverStopsAtDeadline(t *testing.T) {
	browser := mocks.NewMockBrowser(t)
	added := make(chan *discovery.GatewayService, 1)
	added <- gateway("a", 1, discovery.TransportTCP)

	browser.EXPECT().Browse(mock.Anything).
		Return((<-chan *discovery.GatewayService)(added), nil, nil)
	browser.EXPECT().Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := discovery.Discover(ctx, browser, discovery.FilterByTransport(discovery.TransportTCP))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDiscoverBrowseError(t *testing.T) {
	browser := mocks.NewMockBrowser(t)
	boom := errors.New("no multicast")
	browser.EXPECT().Browse(mock.Anything).Return(nil, nil, boom)
	browser.EXPECT().Stop()

	_, err := discovery.Discover(context.Background(), browser, nil)
	assert.ErrorIs(t, err, boom)
}

func TestFilters(t *testing.T) {
	tcp := gateway("a", 7, discovery.TransportTCP)
	ws := gateway("b", 8, discovery.TransportWebSocket)

	byHome := discovery.FilterByHomeID(7)
	assert.True(t, byHome(tcp))
	assert.False(t, byHome(ws))

	byTransport := discovery.FilterByTransport(discovery.TransportWebSocket)
	assert.False(t, byTransport(tcp))
	assert.True(t, byTransport(ws))
}
