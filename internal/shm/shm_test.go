//go:build linux || freebsd || openbsd || netbsd || dragonfly

package shm

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type fakeSys struct {
	opened    []string
	unlinked  []string
	closed    []int
	truncated map[int]int64
	sealed    []int
}

// stubSyscalls replaces every syscall hook with an in-memory fake and
// restores the originals when the test finishes.
func stubSyscalls(t *testing.T) *fakeSys {
	t.Helper()
	fs := &fakeSys{truncated: map[int]int64{}}

	prevMemfd, prevSeal := memfdCreate, addSeals
	prevOpen, prevUnlink, prevClose := openShm, unlinkShm, closeFD
	prevTrunc, prevNow, prevDir := truncateFD, now, shmDir
	t.Cleanup(func() {
		memfdCreate, addSeals = prevMemfd, prevSeal
		openShm, unlinkShm, closeFD = prevOpen, prevUnlink, prevClose
		truncateFD, now, shmDir = prevTrunc, prevNow, prevDir
	})

	tick := time.Unix(1700000000, 0)
	now = func() time.Time {
		tick = tick.Add(time.Nanosecond)
		return tick
	}
	shmDir = func() string { return "/dev/shm" }
	memfdCreate = func(string) (int, error) { return -1, unix.ENOSYS }
	addSeals = func(fd int) error {
		fs.sealed = append(fs.sealed, fd)
		return nil
	}
	openShm = func(path string) (int, error) {
		fs.opened = append(fs.opened, path)
		return 40, nil
	}
	unlinkShm = func(path string) error {
		fs.unlinked = append(fs.unlinked, path)
		return nil
	}
	closeFD = func(fd int) error {
		fs.closed = append(fs.closed, fd)
		return nil
	}
	truncateFD = func(fd int, size int64) error {
		fs.truncated[fd] = size
		return nil
	}
	return fs
}

func TestAllocatePrefersSealedMemfd(t *testing.T) {
	fs := stubSyscalls(t)
	memfdCreate = func(string) (int, error) { return 7, nil }

	buf, err := Allocate(4096)
	require.NoError(t, err)
	assert.Equal(t, 7, buf.Fd())
	assert.Equal(t, 4096, buf.Len())
	assert.Equal(t, int64(4096), fs.truncated[7])
	assert.Equal(t, []int{7}, fs.sealed)
	assert.Empty(t, fs.opened)
}

func TestAllocateRetriesInterruptedMemfd(t *testing.T) {
	stubSyscalls(t)
	calls := 0
	memfdCreate = func(string) (int, error) {
		calls++
		if calls < 3 {
			return -1, unix.EINTR
		}
		return 9, nil
	}

	buf, err := Allocate(64)
	require.NoError(t, err)
	assert.Equal(t, 9, buf.Fd())
	assert.Equal(t, 3, calls)
}

func TestAllocateFallsBackWhenMemfdUnsupported(t *testing.T) {
	fs := stubSyscalls(t)

	buf, err := Allocate(128)
	require.NoError(t, err)
	assert.Equal(t, 40, buf.Fd())
	require.Len(t, fs.opened, 1)
	assert.Equal(t, fs.opened, fs.unlinked)
	assert.Equal(t, "/dev/shm", filepath.Dir(fs.opened[0]))
	assert.Equal(t, int64(128), fs.truncated[40])
}

func TestAllocateRegeneratesNameOnCollision(t *testing.T) {
	fs := stubSyscalls(t)
	attempts := 0
	openShm = func(path string) (int, error) {
		fs.opened = append(fs.opened, path)
		attempts++
		if attempts <= 2 {
			return -1, unix.EEXIST
		}
		return 41, nil
	}

	buf, err := Allocate(256)
	require.NoError(t, err)
	assert.Equal(t, 41, buf.Fd())
	require.Len(t, fs.opened, 3)
	assert.NotEqual(t, fs.opened[0], fs.opened[1])
	assert.NotEqual(t, fs.opened[1], fs.opened[2])
	assert.Equal(t, []string{fs.opened[2]}, fs.unlinked)
}

func TestAllocateRetriesInterruptedOpen(t *testing.T) {
	fs := stubSyscalls(t)
	attempts := 0
	openShm = func(path string) (int, error) {
		fs.opened = append(fs.opened, path)
		attempts++
		if attempts == 1 {
			return -1, unix.EINTR
		}
		return 42, nil
	}

	buf, err := Allocate(32)
	require.NoError(t, err)
	assert.Equal(t, 42, buf.Fd())
	assert.Len(t, fs.opened, 2)
}

func TestAllocateUnlinkFailureClosesDescriptor(t *testing.T) {
	fs := stubSyscalls(t)
	unlinkShm = func(string) error { return unix.EACCES }

	_, err := Allocate(32)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, unix.EACCES)
	assert.Contains(t, err.Error(), "unlink")
	assert.Equal(t, []int{40}, fs.closed)
}

func TestAllocateBothStrategiesExhausted(t *testing.T) {
	stubSyscalls(t)
	memfdCreate = func(string) (int, error) { return -1, unix.EMFILE }
	openShm = func(string) (int, error) { return -1, unix.EMFILE }

	_, err := Allocate(32)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Contains(t, err.Error(), "memfd")
}

func TestAllocateRejectsEmptyRegion(t *testing.T) {
	stubSyscalls(t)
	_, err := Allocate(0)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestAllocateSealFailureClosesMemfd(t *testing.T) {
	fs := stubSyscalls(t)
	memfdCreate = func(string) (int, error) { return 5, nil }
	addSeals = func(int) error { return unix.EPERM }

	buf, err := Allocate(16)
	require.NoError(t, err, "named fallback should still succeed")
	assert.Equal(t, 40, buf.Fd())
	assert.Contains(t, fs.closed, 5)
}

func TestBufferCloseReportsErrors(t *testing.T) {
	stubSyscalls(t)
	closeFD = func(int) error { return errors.New("bad fd") }
	buf := &Buffer{fd: 3, size: 8}
	err := buf.Close()
	require.Error(t, err)
	assert.Equal(t, -1, buf.Fd())
}

func TestObjectNameUsesNanoseconds(t *testing.T) {
	ts := time.Unix(1, 5)
	assert.Equal(t, "wlshot-1000000005", objectName(ts))
}
