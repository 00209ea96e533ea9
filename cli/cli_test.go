package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobile-next/gesturekit/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestParseCoords(t *testing.T) {
	tests := []struct {
		in      string
		x, y    int
		wantErr bool
	}{
		{"100,200", 100, 200, false},
		{" 5 , 7 ", 5, 7, false},
		{"0,0", 0, 0, false},
		{"100", 0, 0, true},
		{"1,2,3", 0, 0, true},
		{"a,2", 0, 0, true},
		{"-1,2", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			x, y, err := parseCoords(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestParsePositive(t *testing.T) {
	v, err := parsePositive("distance", "40")
	require.NoError(t, err)
	assert.Equal(t, 40, v)

	for _, in := range []string{"0", "-3", "abc", ""} {
		_, err := parsePositive("distance", in)
		assert.Error(t, err, in)
	}
}

func TestThresholdOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addThresholdFlags(flags)

	patch, err := thresholdOverrides(flags)
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())

	require.NoError(t, flags.Parse([]string{"--swipe-threshold=80", "--long-press-delay=2s"}))
	patch, err = thresholdOverrides(flags)
	require.NoError(t, err)

	require.NotNil(t, patch.SwipeThreshold)
	assert.Equal(t, 80.0, *patch.SwipeThreshold)
	require.NotNil(t, patch.LongPressDelay)
	assert.Equal(t, 2*time.Second, *patch.LongPressDelay)
	assert.Nil(t, patch.TapThreshold)
	assert.Nil(t, patch.DoubleTapDelay)
}

func newServerStartCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "start"}
	addServerStartFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestServerOptions_Defaults(t *testing.T) {
	opts, err := serverOptions(newServerStartCommand(t))
	require.NoError(t, err)

	assert.Equal(t, defaultServerAddress, opts.Addr)
	assert.False(t, opts.EnableCORS)
	assert.Equal(t, server.DefaultSessionLimit, opts.SessionLimit)
	assert.Empty(t, opts.AuthToken)
}

func TestServerOptions_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesturekit.ini")
	content := `[gesture]
tap_threshold = 12

[server]
listen = :13000
cors = http://a.example, http://b.example
session_limit = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	opts, err := serverOptions(newServerStartCommand(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, ":13000", opts.Addr)
	assert.Equal(t, 8, opts.SessionLimit)
	assert.True(t, opts.EnableCORS)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, opts.AllowedOrigins)
	assert.Equal(t, path, opts.ConfigPath)

	// explicit flags win over the file
	opts, err = serverOptions(newServerStartCommand(t, "--config", path, "--listen", ":14000", "--session-limit", "2"))
	require.NoError(t, err)
	assert.Equal(t, ":14000", opts.Addr)
	assert.Equal(t, 2, opts.SessionLimit)
}

func TestServerOptions_MissingConfig(t *testing.T) {
	_, err := serverOptions(newServerStartCommand(t, "--config", filepath.Join(t.TempDir(), "missing.ini")))
	assert.Error(t, err)
}

func TestServerOptions_Auth(t *testing.T) {
	keyring.MockInit()

	_, err := serverOptions(newServerStartCommand(t, "--auth"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth token set")

	require.NoError(t, keyring.Set(keyringService, keyringUser, "s3cret"))
	defer func() { _ = keyring.Delete(keyringService, keyringUser) }()

	opts, err := serverOptions(newServerStartCommand(t, "--auth"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", opts.AuthToken)
}

func TestStoredToken_NotFound(t *testing.T) {
	keyring.MockInit()

	token, err := storedToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}
