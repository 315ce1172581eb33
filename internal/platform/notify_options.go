// Package platform talks to the host desktop.
package platform

const (
	appName          = "wlshot"
	defaultTimeoutMS = int32(5000)
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// TimeoutMS is how long the notification stays visible; zero uses the
	// default.
	TimeoutMS int32
}
