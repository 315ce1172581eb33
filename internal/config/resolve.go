package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag names registered by AddFlags.
const (
	FlagOutput      = "output"
	FlagQuality     = "quality"
	FlagCursor      = "cursor"
	FlagX11Fallback = "x11-fallback"
	FlagLogLevel    = "log-level"
	FlagNotify      = "notify"
)

// AddFlags registers the command-line overrides for every setting.
func AddFlags(fs *pflag.FlagSet) {
	d := New()
	fs.StringP(FlagOutput, "o", d.Output, "output to capture: index, name or description substring")
	fs.IntP(FlagQuality, "q", d.Quality, "JPEG quality, 1-100")
	fs.BoolP(FlagCursor, "c", d.Cursor, "include the cursor in the capture")
	fs.Bool(FlagX11Fallback, d.X11Fallback, "capture through X11 when no Wayland compositor is reachable")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.Bool(FlagNotify, d.Notify.Capture, "send a desktop notification after capturing")
}

// Resolve layers command-line flags over WLSHOT_* environment variables over
// the rc file values in file. fs may be nil.
func Resolve(file *Config, fs *pflag.FlagSet) (*Config, error) {
	if file == nil {
		file = New()
	}
	v := viper.New()
	v.SetEnvPrefix("WLSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("log_level", "WLSHOT_LOG"); err != nil {
		return nil, err
	}

	if err := v.MergeConfigMap(map[string]any{
		"output":       file.Output,
		"quality":      file.Quality,
		"cursor":       file.Cursor,
		"x11_fallback": file.X11Fallback,
		"log_level":    file.LogLevel,
		"notify": map[string]any{
			"capture": file.Notify.Capture,
		},
	}); err != nil {
		return nil, err
	}

	if fs != nil {
		for key, flag := range map[string]string{
			"output":         FlagOutput,
			"quality":        FlagQuality,
			"cursor":         FlagCursor,
			"x11_fallback":   FlagX11Fallback,
			"log_level":      FlagLogLevel,
			"notify.capture": FlagNotify,
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		Output:   v.GetString("output"),
		LogLevel: strings.ToLower(v.GetString("log_level")),
	}
	var err error
	if cfg.Quality, err = strconv.Atoi(v.GetString("quality")); err != nil {
		return nil, fmt.Errorf("quality: %w", err)
	}
	if cfg.Cursor, err = strconv.ParseBool(v.GetString("cursor")); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	if cfg.X11Fallback, err = strconv.ParseBool(v.GetString("x11_fallback")); err != nil {
		return nil, fmt.Errorf("x11_fallback: %w", err)
	}
	if cfg.Notify.Capture, err = strconv.ParseBool(v.GetString("notify.capture")); err != nil {
		return nil, fmt.Errorf("notify.capture: %w", err)
	}
	return cfg, nil
}
