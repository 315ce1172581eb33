// Package notify announces finished captures on the desktop.
package notify

import (
	"image"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/example/wlshot/internal/encode"
	"github.com/example/wlshot/internal/platform"
)

// Event identifies a notification trigger.
type Event string

// EventCapture emits a notification when a capture completes.
const EventCapture Event = "capture"

const previewQuality = 70

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "wlshot",
		Events: map[Event]EventPreference{
			EventCapture: {Template: "Captured %s"},
		},
	}
}

// LoadPreferences reads WLSHOT_NOTIFY_TITLE and WLSHOT_NOTIFY_CAPTURE_TEXT
// over the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("WLSHOT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	if v := strings.TrimSpace(os.Getenv("WLSHOT_NOTIFY_CAPTURE_TEXT")); v != "" {
		prefs.Events[EventCapture] = EventPreference{Template: v}
	}
	return prefs
}

var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	log     *zap.Logger
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), log: log}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Capture sends a capture notification with an optional image preview.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			n.log.Warn("notification preview", zap.Error(err))
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCapture, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	// Only %s is substituted; any other % is literal text.
	body := strings.TrimSpace(strings.Replace(template, "%s", strings.TrimSpace(detail), 1))
	if err := send(n.prefs.Title, body, opts); err != nil {
		n.log.Warn("notification failed", zap.String("event", string(event)), zap.Error(err))
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "wlshot-preview-*.jpg")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := encode.JPEG(f, img, previewQuality); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		_ = os.Remove(path)
	}
	return path, cleanup, nil
}
