//go:build linux || freebsd || openbsd || netbsd || dragonfly

// Package screencopy binds the wlr-screencopy-unstable-v1 protocol for
// go-wayland clients.
package screencopy

import "github.com/rajveermalviya/go-wayland/wayland/client"

const (
	managerCaptureOutput = 0
	managerDestroy       = 2

	frameCopy    = 0
	frameDestroy = 1
)

// Manager is zwlr_screencopy_manager_v1.
type Manager struct {
	client.BaseProxy
}

// NewManager registers an unbound manager proxy with ctx.
func NewManager(ctx *client.Context) *Manager {
	m := &Manager{}
	ctx.Register(m)
	return m
}

// CaptureOutput requests the next frame of output. overlayCursor composites
// the cursor into the frame.
func (m *Manager) CaptureOutput(overlayCursor bool, output *client.Output) (*Frame, error) {
	frame := NewFrame(m.Context())
	const reqLen = 8 + 4 + 4 + 4
	var buf [reqLen]byte
	l := putHeader(buf[:], m.ID(), managerCaptureOutput, reqLen)
	client.PutUint32(buf[l:l+4], frame.ID())
	l += 4
	client.PutUint32(buf[l:l+4], boolArg(overlayCursor))
	l += 4
	client.PutUint32(buf[l:l+4], output.ID())
	err := m.Context().WriteMsg(buf[:], nil)
	return frame, err
}

// Destroy destroys the manager. Frames already requested stay valid.
func (m *Manager) Destroy() error {
	defer m.Context().Unregister(m)
	const reqLen = 8
	var buf [reqLen]byte
	putHeader(buf[:], m.ID(), managerDestroy, reqLen)
	return m.Context().WriteMsg(buf[:], nil)
}

// BufferEvent advertises one wl_shm format the frame can be copied into.
type BufferEvent struct {
	Format uint32
	Width  uint32
	Height uint32
	Stride uint32
}

// FlagsEvent carries frame flags; bit 0 is y_invert.
type FlagsEvent struct {
	Flags uint32
}

// ReadyEvent reports that the copy finished. The timestamp is the frame's
// presentation time.
type ReadyEvent struct {
	TvSecHi uint32
	TvSecLo uint32
	TvNsec  uint32
}

// FailedEvent reports that the copy could not be performed.
type FailedEvent struct{}

// DamageEvent reports a damaged region. Compositors send it only for
// copy_with_damage, which this client never issues.
type DamageEvent struct {
	X, Y, Width, Height uint32
}

// LinuxDmabufEvent advertises a dmabuf format (v3).
type LinuxDmabufEvent struct {
	Format uint32
	Width  uint32
	Height uint32
}

// BufferDoneEvent ends the buffer advertisement (v3).
type BufferDoneEvent struct{}

// Frame is zwlr_screencopy_frame_v1.
type Frame struct {
	client.BaseProxy
	bufferHandler      func(BufferEvent)
	flagsHandler       func(FlagsEvent)
	readyHandler       func(ReadyEvent)
	failedHandler      func(FailedEvent)
	damageHandler      func(DamageEvent)
	linuxDmabufHandler func(LinuxDmabufEvent)
	bufferDoneHandler  func(BufferDoneEvent)
}

// NewFrame registers a frame proxy with ctx.
func NewFrame(ctx *client.Context) *Frame {
	f := &Frame{}
	ctx.Register(f)
	return f
}

// Copy asks the compositor to copy the frame into buffer.
func (f *Frame) Copy(buffer *client.Buffer) error {
	const reqLen = 8 + 4
	var buf [reqLen]byte
	l := putHeader(buf[:], f.ID(), frameCopy, reqLen)
	client.PutUint32(buf[l:l+4], buffer.ID())
	return f.Context().WriteMsg(buf[:], nil)
}

// Destroy destroys the frame.
func (f *Frame) Destroy() error {
	defer f.Context().Unregister(f)
	const reqLen = 8
	var buf [reqLen]byte
	putHeader(buf[:], f.ID(), frameDestroy, reqLen)
	return f.Context().WriteMsg(buf[:], nil)
}

func (f *Frame) SetBufferHandler(h func(BufferEvent))           { f.bufferHandler = h }
func (f *Frame) SetFlagsHandler(h func(FlagsEvent))             { f.flagsHandler = h }
func (f *Frame) SetReadyHandler(h func(ReadyEvent))             { f.readyHandler = h }
func (f *Frame) SetFailedHandler(h func(FailedEvent))           { f.failedHandler = h }
func (f *Frame) SetDamageHandler(h func(DamageEvent))           { f.damageHandler = h }
func (f *Frame) SetLinuxDmabufHandler(h func(LinuxDmabufEvent)) { f.linuxDmabufHandler = h }
func (f *Frame) SetBufferDoneHandler(h func(BufferDoneEvent))   { f.bufferDoneHandler = h }

// Dispatch decodes an event addressed to the frame.
func (f *Frame) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case 0:
		if f.bufferHandler == nil {
			return
		}
		f.bufferHandler(BufferEvent{
			Format: client.Uint32(data[0:4]),
			Width:  client.Uint32(data[4:8]),
			Height: client.Uint32(data[8:12]),
			Stride: client.Uint32(data[12:16]),
		})
	case 1:
		if f.flagsHandler == nil {
			return
		}
		f.flagsHandler(FlagsEvent{Flags: client.Uint32(data[0:4])})
	case 2:
		if f.readyHandler == nil {
			return
		}
		f.readyHandler(ReadyEvent{
			TvSecHi: client.Uint32(data[0:4]),
			TvSecLo: client.Uint32(data[4:8]),
			TvNsec:  client.Uint32(data[8:12]),
		})
	case 3:
		if f.failedHandler == nil {
			return
		}
		f.failedHandler(FailedEvent{})
	case 4:
		if f.damageHandler == nil {
			return
		}
		f.damageHandler(DamageEvent{
			X:      client.Uint32(data[0:4]),
			Y:      client.Uint32(data[4:8]),
			Width:  client.Uint32(data[8:12]),
			Height: client.Uint32(data[12:16]),
		})
	case 5:
		if f.linuxDmabufHandler == nil {
			return
		}
		f.linuxDmabufHandler(LinuxDmabufEvent{
			Format: client.Uint32(data[0:4]),
			Width:  client.Uint32(data[4:8]),
			Height: client.Uint32(data[8:12]),
		})
	case 6:
		if f.bufferDoneHandler == nil {
			return
		}
		f.bufferDoneHandler(BufferDoneEvent{})
	}
}

func putHeader(buf []byte, id, opcode uint32, size int) int {
	client.PutUint32(buf[0:4], id)
	client.PutUint32(buf[4:8], uint32(size)<<16|opcode&0xffff)
	return 8
}

func boolArg(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
