package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/example/wlshot/internal/capture"
	"github.com/example/wlshot/internal/encode"
)

var captureScreenshotFn = capture.CaptureScreenshot

func (r *root) captureOptions() capture.Options {
	return capture.Options{
		Output:      r.config.Output,
		Cursor:      r.config.Cursor,
		X11Fallback: r.config.X11Fallback,
		Display:     r.display,
		Log:         r.log,
	}
}

// runSnapshot captures, encodes and emits. Nothing reaches stdout unless the
// capture succeeded.
func (r *root) runSnapshot() error {
	img, out, err := captureScreenshotFn(r.captureOptions())
	if err != nil {
		return fmt.Errorf("failed to capture screen: %w", err)
	}
	quality := encode.ClampQuality(r.config.Quality)
	if quality != r.config.Quality {
		r.log.Warn("quality out of range", zap.Int("requested", r.config.Quality), zap.Int("using", quality))
	}
	if err := encode.JPEG(r.stdout, img, quality); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	r.log.Info("captured", zap.String("output", out.Label()),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	r.notifier.Capture(out.Label(), img)
	return nil
}
