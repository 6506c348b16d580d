package daemon

import (
	"net"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mobile-next/windowthrottle/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsChild(t *testing.T) {
	t.Setenv(DaemonEnvVar, "")
	assert.False(t, IsChild())

	t.Setenv(DaemonEnvVar, "1")
	assert.True(t, IsChild())
}

func TestKillServerSendsShutdown(t *testing.T) {
	var shutdowns int32
	ts := httptest.NewServer(server.NewHandler(false, func() {
		atomic.AddInt32(&shutdowns, 1)
	}))
	defer ts.Close()

	addr := strings.TrimPrefix(ts.URL, "http://")
	require.NoError(t, KillServer(addr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&shutdowns))
}

func TestKillServerNotRunning(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	err = KillServer(addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestKillServerInvalidAddress(t *testing.T) {
	assert.Error(t, KillServer("nonsense"))
}
