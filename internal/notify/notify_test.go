package notify

import (
	"errors"
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wlshot/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func stubSend(t *testing.T, err error) *[]sent {
	t.Helper()
	var calls []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		_, statErr := os.Stat(opts.IconPath)
		calls = append(calls, sent{title: title, body: body, opts: opts, iconExisted: statErr == nil})
		return err
	}
	t.Cleanup(func() { send = prev })
	return &calls
}

func TestCaptureDisabledByDefault(t *testing.T) {
	calls := stubSend(t, nil)
	New(DefaultPreferences(), nil).Capture("DP-1", nil)
	assert.Empty(t, *calls)

	var n *Notifier
	n.Enable(EventCapture, true)
	n.Capture("DP-1", nil)
	assert.Empty(t, *calls)
}

func TestCaptureSendsPreview(t *testing.T) {
	calls := stubSend(t, nil)
	n := New(DefaultPreferences(), nil)
	n.Enable(EventCapture, true)

	n.Capture(" DP-1 ", image.NewRGBA(image.Rect(0, 0, 4, 4)))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "wlshot", got.title)
	assert.Equal(t, "Captured DP-1", got.body)
	assert.True(t, got.iconExisted)
	_, err := os.Stat(got.opts.IconPath)
	assert.True(t, os.IsNotExist(err), "preview removed after sending")
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("WLSHOT_NOTIFY_TITLE", "Screens")
	t.Setenv("WLSHOT_NOTIFY_CAPTURE_TEXT", "Grabbed")
	calls := stubSend(t, errors.New("no session bus"))

	n := New(LoadPreferences(), nil)
	n.Enable(EventCapture, true)
	n.Capture("DP-1", nil)

	require.Len(t, *calls, 1)
	assert.Equal(t, "Screens", (*calls)[0].title)
	assert.Equal(t, "Grabbed", (*calls)[0].body)
	assert.Empty(t, (*calls)[0].opts.IconPath)
}

func TestTemplateKeepsLiteralPercent(t *testing.T) {
	calls := stubSend(t, nil)
	prefs := DefaultPreferences()
	prefs.Events[EventCapture] = EventPreference{Template: "100% done: %s"}
	n := New(prefs, nil)
	n.Enable(EventCapture, true)

	n.Capture("DP-1", nil)

	require.Len(t, *calls, 1)
	assert.Equal(t, "100% done: DP-1", (*calls)[0].body)
}
