//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"errors"
	"image"
)

var errX11Unsupported = errors.New("X11 capture is not supported on this platform")

type unsupportedBackend struct{}

func newX11Backend() x11Source {
	return unsupportedBackend{}
}

func (unsupportedBackend) ListOutputs() ([]OutputInfo, error) {
	return nil, errX11Unsupported
}

func (unsupportedBackend) Capture(string) (*image.RGBA, OutputInfo, error) {
	return nil, OutputInfo{}, errX11Unsupported
}

func runningOnWayland() bool { return false }
