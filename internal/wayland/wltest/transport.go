// Package wltest provides a scripted in-memory wayland.Transport.
package wltest

import (
	"errors"

	"github.com/example/wlshot/internal/wayland"
)

// ErrStalled is returned once a test drives more round-trips than allowed,
// which means the code under test is waiting for an event that never comes.
var ErrStalled = errors.New("wltest: round-trip limit reached")

// BindCall records a Bind request.
type BindCall struct {
	ID      wayland.ObjectID
	Global  wayland.Global
	Version uint32
}

// CaptureCall records a CaptureOutput request.
type CaptureCall struct {
	Frame         wayland.ObjectID
	Manager       wayland.ObjectID
	Output        wayland.ObjectID
	OverlayCursor bool
}

// PoolCall records a CreatePool request.
type PoolCall struct {
	ID   wayland.ObjectID
	Shm  wayland.ObjectID
	Fd   int
	Size int32
}

// BufferCall records a CreateBuffer request.
type BufferCall struct {
	ID     wayland.ObjectID
	Pool   wayland.ObjectID
	Offset int32
	Width  int32
	Height int32
	Stride int32
	Format uint32
}

// CopyCall records a CopyFrame request.
type CopyCall struct {
	Frame  wayland.ObjectID
	Buffer wayland.ObjectID
}

// Transport replays queued events and records every request. The On* hooks
// let a test play the compositor by queueing replies to requests; their
// results are delivered by the next Roundtrip.
type Transport struct {
	Pending []wayland.Event
	// Later holds batches that become Pending one round-trip at a time.
	Later [][]wayland.Event

	OnBind    func(call BindCall) []wayland.Event
	OnCapture func(call CaptureCall) []wayland.Event
	OnCopy    func(call CopyCall) []wayland.Event

	RoundtripErr  error
	MaxRoundtrips int

	Binds      []BindCall
	Captures   []CaptureCall
	Pools      []PoolCall
	Buffers    []BufferCall
	Copies     []CopyCall
	Destroyed  []wayland.ObjectID
	Roundtrips int
	Closed     bool

	nextID wayland.ObjectID
}

// New returns a transport whose first round-trip advertises globals.
func New(globals ...wayland.Global) *Transport {
	t := &Transport{MaxRoundtrips: 64, nextID: 2}
	for _, g := range globals {
		t.Push(wayland.GlobalAdded{Global: g})
	}
	return t
}

// StandardGlobals advertises one output, wl_shm and a v3 screencopy manager.
func StandardGlobals() []wayland.Global {
	return []wayland.Global{
		{Name: 1, Interface: wayland.ShmInterface, Version: 1},
		{Name: 2, Interface: wayland.OutputInterface, Version: 4},
		{Name: 3, Interface: wayland.ScreencopyManagerInterface, Version: 3},
	}
}

// DescribeOutput returns the events a compositor sends after an output is
// bound, terminated by done.
func DescribeOutput(id wayland.ObjectID, name string, width, height int32) []wayland.Event {
	return []wayland.Event{
		wayland.OutputGeometry{Output: id, Make: "Virtual", Model: name},
		wayland.OutputMode{Output: id, Current: true, Width: width, Height: height, Refresh: 60000},
		wayland.OutputScale{Output: id, Factor: 1},
		wayland.OutputName{Output: id, Name: name},
		wayland.OutputDone{Output: id},
	}
}

// Dialer returns a wayland.Dialer handing out t.
func (t *Transport) Dialer() wayland.Dialer {
	return func(string) (wayland.Transport, error) { return t, nil }
}

// Push queues events for the next round-trip.
func (t *Transport) Push(events ...wayland.Event) {
	t.Pending = append(t.Pending, events...)
}

func (t *Transport) allocate() wayland.ObjectID {
	id := t.nextID
	t.nextID++
	return id
}

func (t *Transport) Roundtrip() ([]wayland.Event, error) {
	t.Roundtrips++
	if t.RoundtripErr != nil {
		return nil, t.RoundtripErr
	}
	if t.MaxRoundtrips > 0 && t.Roundtrips > t.MaxRoundtrips {
		return nil, ErrStalled
	}
	events := t.Pending
	t.Pending = nil
	if len(t.Later) > 0 {
		t.Pending = t.Later[0]
		t.Later = t.Later[1:]
	}
	return events, nil
}

func (t *Transport) Bind(g wayland.Global, version uint32) (wayland.ObjectID, error) {
	call := BindCall{ID: t.allocate(), Global: g, Version: version}
	t.Binds = append(t.Binds, call)
	if t.OnBind != nil {
		t.Push(t.OnBind(call)...)
	}
	return call.ID, nil
}

func (t *Transport) CaptureOutput(manager wayland.ObjectID, overlayCursor bool, output wayland.ObjectID) (wayland.ObjectID, error) {
	call := CaptureCall{Frame: t.allocate(), Manager: manager, Output: output, OverlayCursor: overlayCursor}
	t.Captures = append(t.Captures, call)
	if t.OnCapture != nil {
		t.Push(t.OnCapture(call)...)
	}
	return call.Frame, nil
}

func (t *Transport) CreatePool(shm wayland.ObjectID, fd int, size int32) (wayland.ObjectID, error) {
	call := PoolCall{ID: t.allocate(), Shm: shm, Fd: fd, Size: size}
	t.Pools = append(t.Pools, call)
	return call.ID, nil
}

func (t *Transport) CreateBuffer(pool wayland.ObjectID, offset, width, height, stride int32, format uint32) (wayland.ObjectID, error) {
	call := BufferCall{ID: t.allocate(), Pool: pool, Offset: offset, Width: width, Height: height, Stride: stride, Format: format}
	t.Buffers = append(t.Buffers, call)
	return call.ID, nil
}

func (t *Transport) CopyFrame(frame, buffer wayland.ObjectID) error {
	call := CopyCall{Frame: frame, Buffer: buffer}
	t.Copies = append(t.Copies, call)
	if t.OnCopy != nil {
		t.Push(t.OnCopy(call)...)
	}
	return nil
}

func (t *Transport) Destroy(id wayland.ObjectID) error {
	t.Destroyed = append(t.Destroyed, id)
	return nil
}

func (t *Transport) Close() error {
	t.Closed = true
	return nil
}
