package config

import (
	"fmt"
	"strings"

	"github.com/example/wlshot/internal/encode"
	"github.com/example/wlshot/internal/logging"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool
}

// Config holds the application configuration.
type Config struct {
	Output      string
	Quality     int
	Cursor      bool
	X11Fallback bool
	LogLevel    string
	Notify      Notify
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Quality:     encode.DefaultQuality,
		X11Fallback: true,
		LogLevel:    logging.DefaultLevel,
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Output != "" {
		fmt.Fprintf(&sb, "output = %s\n", c.Output)
	}
	fmt.Fprintf(&sb, "quality = %d\n", c.Quality)
	fmt.Fprintf(&sb, "cursor = %v\n", c.Cursor)
	fmt.Fprintf(&sb, "x11_fallback = %v\n", c.X11Fallback)
	if c.LogLevel != "" {
		fmt.Fprintf(&sb, "log_level = %s\n", c.LogLevel)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)

	return sb.String()
}
