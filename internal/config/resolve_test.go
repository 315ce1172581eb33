package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(nil, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestResolveFileValues(t *testing.T) {
	file := New()
	file.Output = "DP-2"
	file.Quality = 50
	file.Notify.Capture = true

	cfg, err := Resolve(file, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, file, cfg)
}

func TestResolvePrecedence(t *testing.T) {
	file := New()
	file.Quality = 50
	file.Output = "DP-2"
	file.LogLevel = "error"

	t.Setenv("WLSHOT_QUALITY", "60")
	t.Setenv("WLSHOT_OUTPUT", "HDMI-A-1")
	t.Setenv("WLSHOT_LOG", "INFO")
	t.Setenv("WLSHOT_NOTIFY_CAPTURE", "true")

	cfg, err := Resolve(file, newFlags(t, "--quality", "70"))
	require.NoError(t, err)

	assert.Equal(t, 70, cfg.Quality, "flag beats env")
	assert.Equal(t, "HDMI-A-1", cfg.Output, "env beats file")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Notify.Capture)
	assert.True(t, cfg.X11Fallback, "default survives")
}

func TestResolveFlagsOnly(t *testing.T) {
	cfg, err := Resolve(New(), newFlags(t, "-o", "1", "--cursor", "--x11-fallback=false", "--notify"))
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Output)
	assert.True(t, cfg.Cursor)
	assert.False(t, cfg.X11Fallback)
	assert.True(t, cfg.Notify.Capture)
}

func TestResolveRejectsBadEnv(t *testing.T) {
	t.Setenv("WLSHOT_CURSOR", "perhaps")
	_, err := Resolve(New(), nil)
	assert.ErrorContains(t, err, "cursor")
}
