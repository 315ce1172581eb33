//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package wayland

import "errors"

// Dial always fails on platforms without Wayland.
func Dial(string) (Transport, error) {
	return nil, errors.New("wayland is not supported on this platform")
}
