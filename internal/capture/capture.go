// Package capture takes a still frame of one display output, over
// wlr-screencopy when a Wayland compositor is reachable and through X11
// otherwise.
package capture

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/example/wlshot/internal/wayland"
)

const (
	shmVersion = 1
	// buffer_done exists from version 3.
	screencopyVersion = 3
)

// Options controls a capture.
type Options struct {
	// Output selects the output; see FindOutput.
	Output string
	// Cursor composites the pointer into the frame.
	Cursor bool
	// X11Fallback allows capturing through X11 when no Wayland compositor
	// can be reached outside a Wayland session.
	X11Fallback bool
	// Display names the Wayland socket; empty uses WAYLAND_DISPLAY.
	Display string
	Log     *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

type x11Source interface {
	ListOutputs() ([]OutputInfo, error)
	Capture(selector string) (*image.RGBA, OutputInfo, error)
}

var (
	dialWayland      wayland.Dialer = wayland.Dial
	x11              x11Source      = newX11Backend()
	sessionOnWayland                = runningOnWayland
)

// CaptureScreenshot captures the selected output and returns its pixels in
// RGBA order with the output that was captured.
func CaptureScreenshot(opts Options) (*image.RGBA, OutputInfo, error) {
	img, out, err := captureWayland(opts)
	if err == nil {
		return img, out, nil
	}
	if !useX11(opts, err) {
		return nil, OutputInfo{}, err
	}
	opts.logger().Warn("no wayland compositor reachable, capturing through X11", zap.Error(err))
	img, out, xerr := x11.Capture(opts.Output)
	if xerr != nil {
		return nil, OutputInfo{}, fmt.Errorf("%w; x11 fallback: %w", err, xerr)
	}
	return img, out, nil
}

// ListOutputs describes every output the capture backend can see.
func ListOutputs(opts Options) ([]OutputInfo, error) {
	outputs, err := listWayland(opts)
	if err == nil {
		return outputs, nil
	}
	if !useX11(opts, err) {
		return nil, err
	}
	outputs, xerr := x11.ListOutputs()
	if xerr != nil {
		return nil, fmt.Errorf("%w; x11 fallback: %w", err, xerr)
	}
	return outputs, nil
}

func useX11(opts Options, err error) bool {
	return opts.X11Fallback && errors.Is(err, wayland.ErrConnection) && !sessionOnWayland()
}

func listWayland(opts Options) ([]OutputInfo, error) {
	s, err := wayland.Connect(dialWayland, opts.Display, opts.logger())
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return DiscoverOutputs(s, opts.logger())
}

func captureWayland(opts Options) (*image.RGBA, OutputInfo, error) {
	log := opts.logger()
	s, err := wayland.Connect(dialWayland, opts.Display, log)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	defer s.Close()

	shmID, err := s.Bind(wayland.ShmInterface, shmVersion, shmVersion)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	manager, err := s.Bind(wayland.ScreencopyManagerInterface, screencopyVersion, screencopyVersion)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	defer func() { _ = s.Destroy(manager) }()

	outputs, err := DiscoverOutputs(s, log)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	target, err := FindOutput(outputs, opts.Output)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	log.Info("capturing output", zap.Int("index", target.Index), zap.String("name", target.Label()))

	cs, err := Negotiate(s, shmID, manager, target, opts.Cursor, log)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	defer cs.Buffer.Close()

	img, err := cs.Image()
	if err != nil {
		return nil, OutputInfo{}, err
	}
	return img, target, nil
}
