package utils

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPortAvailable(t *testing.T) {
	assert.True(t, IsPortAvailable("127.0.0.1", 0), "port 0 lets the OS pick a free port")
	assert.False(t, IsPortAvailable("::1", 0), "only tcp4 is checked")
	assert.False(t, IsPortAvailable("127.0.0.1", 65536))
}

func TestIsPortAvailable_PortInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	assert.False(t, IsPortAvailable("127.0.0.1", port))
}

func TestSplitListenAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{addr: "12000", wantHost: "", wantPort: 12000},
		{addr: ":13000", wantHost: "", wantPort: 13000},
		{addr: "localhost:12000", wantHost: "127.0.0.1", wantPort: 12000},
		{addr: "0.0.0.0:9000", wantHost: "0.0.0.0", wantPort: 9000},
		{addr: "localhost:http", wantErr: true},
		{addr: "localhost:70000", wantErr: true},
		{addr: "a:b:c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port, err := SplitListenAddr(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestCheckListenAddr(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	assert.Error(t, CheckListenAddr(fmt.Sprintf("127.0.0.1:%d", port)))
	assert.Error(t, CheckListenAddr(fmt.Sprintf("localhost:%d", port)))
	assert.NoError(t, CheckListenAddr("127.0.0.1:0"))
	assert.Error(t, CheckListenAddr("not-a-port"))
}
