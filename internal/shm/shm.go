//go:build linux || freebsd || openbsd || netbsd || dragonfly

// Package shm provides anonymous, file-descriptor backed memory regions that
// can be handed to the compositor through wl_shm and mapped afterwards.
package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrAllocation reports that no shared memory strategy produced a region.
	ErrAllocation = errors.New("allocate shared memory")

	errMemfdUnsupported = errors.New("memfd_create is not available")
)

// Syscall entry points, replaced in tests.
var (
	openShm = func(path string) (int, error) {
		return unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0o600)
	}
	unlinkShm  = unix.Unlink
	closeFD    = unix.Close
	truncateFD = unix.Ftruncate
	mmapFD     = unix.Mmap
	munmapFD   = unix.Munmap
	now        = time.Now
	shmDir     = defaultShmDir
)

// Buffer is a shared memory region identified by a file descriptor.
type Buffer struct {
	fd   int
	size int
	data []byte
}

// Allocate returns a region of exactly size bytes. It prefers a sealed memfd
// and falls back to a named shared memory object that is unlinked as soon as
// it exists.
func Allocate(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAllocation, size)
	}
	fd, memfdErr := allocateMemfd(size)
	if memfdErr == nil {
		return &Buffer{fd: fd, size: size}, nil
	}
	fd, namedErr := allocateNamed(size)
	if namedErr != nil {
		return nil, fmt.Errorf("%w: memfd: %v; named object: %w", ErrAllocation, memfdErr, namedErr)
	}
	return &Buffer{fd: fd, size: size}, nil
}

func allocateMemfd(size int) (int, error) {
	var fd int
	err := retryInterrupted(func() (err error) {
		fd, err = memfdCreate("wlshot")
		return err
	})
	if err != nil {
		if errors.Is(err, unix.ENOSYS) {
			return -1, errMemfdUnsupported
		}
		return -1, fmt.Errorf("memfd_create: %w", err)
	}
	if err := resize(fd, size); err != nil {
		_ = closeFD(fd)
		return -1, err
	}
	if err := addSeals(fd); err != nil && !errors.Is(err, unix.EINVAL) {
		_ = closeFD(fd)
		return -1, fmt.Errorf("seal memfd: %w", err)
	}
	return fd, nil
}

func allocateNamed(size int) (int, error) {
	fd, err := openUniqueShm()
	if err != nil {
		return -1, err
	}
	if err := resize(fd, size); err != nil {
		_ = closeFD(fd)
		return -1, err
	}
	return fd, nil
}

// openUniqueShm creates a fresh object named after the current time and
// unlinks it immediately so only the descriptor refers to it.
func openUniqueShm() (int, error) {
	dir := shmDir()
	for {
		path := filepath.Join(dir, objectName(now()))
		fd, err := openShm(path)
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EEXIST) {
			continue
		}
		if err != nil {
			return -1, fmt.Errorf("open %s: %w", path, err)
		}
		if err := unlinkShm(path); err != nil {
			_ = closeFD(fd)
			return -1, fmt.Errorf("unlink %s: %w", path, err)
		}
		return fd, nil
	}
}

func objectName(t time.Time) string {
	return fmt.Sprintf("wlshot-%d", t.UnixNano())
}

func defaultShmDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

func resize(fd, size int) error {
	err := retryInterrupted(func() error {
		return truncateFD(fd, int64(size))
	})
	if err != nil {
		return fmt.Errorf("truncate to %d bytes: %w", size, err)
	}
	return nil
}

func retryInterrupted(fn func() error) error {
	for {
		err := fn()
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// Fd returns the descriptor backing the region.
func (b *Buffer) Fd() int { return b.fd }

// Len returns the size of the region in bytes.
func (b *Buffer) Len() int { return b.size }

// Map maps the region shared and read/write. Repeated calls return the same
// mapping.
func (b *Buffer) Map() ([]byte, error) {
	if b.data != nil {
		return b.data, nil
	}
	data, err := mmapFD(b.fd, 0, b.size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", b.size, err)
	}
	b.data = data
	return data, nil
}

// Close unmaps the region and closes its descriptor.
func (b *Buffer) Close() error {
	var errs []error
	if b.data != nil {
		if err := munmapFD(b.data); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
		b.data = nil
	}
	if b.fd >= 0 {
		if err := closeFD(b.fd); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
		b.fd = -1
	}
	return errors.Join(errs...)
}
