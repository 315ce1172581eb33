//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package shm

import (
	"errors"
	"fmt"
)

// ErrAllocation reports that no shared memory strategy produced a region.
var ErrAllocation = errors.New("allocate shared memory")

// Buffer is unavailable on this platform.
type Buffer struct{}

// Allocate always fails on this platform.
func Allocate(size int) (*Buffer, error) {
	return nil, fmt.Errorf("%w: shared memory is not supported on this platform", ErrAllocation)
}

func (b *Buffer) Fd() int { return -1 }

func (b *Buffer) Len() int { return 0 }

func (b *Buffer) Map() ([]byte, error) {
	return nil, fmt.Errorf("mmap is not supported on this platform")
}

func (b *Buffer) Close() error { return nil }
