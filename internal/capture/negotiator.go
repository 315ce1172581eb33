package capture

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/example/wlshot/internal/pixfmt"
	"github.com/example/wlshot/internal/shm"
	"github.com/example/wlshot/internal/wayland"
)

var (
	// ErrUnsupportedFormat reports that none of the advertised buffer formats
	// can be converted.
	ErrUnsupportedFormat = errors.New("no supported buffer format advertised")
	// ErrCaptureFailed reports that the compositor failed the frame or broke
	// the copy sequence.
	ErrCaptureFailed = errors.New("frame capture failed")
)

// State is the position of a capture in the copy sequence.
type State int

const (
	AwaitingFormats State = iota
	FormatsAvailable
	CopyRequested
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingFormats:
		return "awaiting-formats"
	case FormatsAvailable:
		return "formats-available"
	case CopyRequested:
		return "copy-requested"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Finished || s == Failed }

// FrameState is the frame-level view of a State.
type FrameState int

const (
	Pending FrameState = iota
	Ready
	FrameFailed
)

// Frame projects the state onto the frame.
func (s State) Frame() FrameState {
	switch s {
	case Finished:
		return Ready
	case Failed:
		return FrameFailed
	}
	return Pending
}

// FrameFormat is one buffer layout the compositor offered.
type FrameFormat struct {
	Format pixfmt.Format
	Width  uint32
	Height uint32
	Stride uint32
}

// Size is the byte length of a buffer in this layout.
func (f FrameFormat) Size() uint64 {
	return uint64(f.Stride) * uint64(f.Height)
}

// Valid reports whether frames in this layout can be copied and converted.
func (f FrameFormat) Valid() bool {
	if !f.Format.IsSupported() || f.Width == 0 || f.Height == 0 {
		return false
	}
	return uint64(f.Stride) >= uint64(f.Width)*uint64(f.Format.BytesPerPixel())
}

// SharedBuffer is memory shared with the compositor.
type SharedBuffer interface {
	Fd() int
	Len() int
	Map() ([]byte, error)
	Close() error
}

// CaptureSession is the outcome of one negotiation.
type CaptureSession struct {
	Output    OutputInfo
	Formats   []FrameFormat
	Format    FrameFormat
	Buffer    SharedBuffer
	State     State
	YInverted bool
}

// requester is the subset of *wayland.Session the negotiator drives.
type requester interface {
	Roundtrip(h wayland.Handler) error
	CaptureOutput(manager wayland.ObjectID, overlayCursor bool, output wayland.ObjectID) (wayland.ObjectID, error)
	CreatePool(shm wayland.ObjectID, fd int, size int32) (wayland.ObjectID, error)
	CreateBuffer(pool wayland.ObjectID, offset, width, height, stride int32, format uint32) (wayland.ObjectID, error)
	CopyFrame(frame, buffer wayland.ObjectID) error
	Destroy(id wayland.ObjectID) error
}

var allocateBuffer = func(size int) (SharedBuffer, error) {
	b, err := shm.Allocate(size)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type negotiator struct {
	req     requester
	log     *zap.Logger
	shm     wayland.ObjectID
	session *CaptureSession

	frame  wayland.ObjectID
	pool   wayland.ObjectID
	buffer wayland.ObjectID
	err    error
}

// Negotiate requests one frame of output and drives the copy sequence to a
// terminal state. On success the returned session owns a buffer holding the
// frame; the caller closes it.
func Negotiate(req requester, shmID, manager wayland.ObjectID, output OutputInfo, overlayCursor bool, log *zap.Logger) (*CaptureSession, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n := &negotiator{
		req:     req,
		log:     log,
		shm:     shmID,
		session: &CaptureSession{Output: output, State: AwaitingFormats},
	}
	if err := n.run(manager, overlayCursor); err != nil {
		return nil, err
	}
	return n.session, nil
}

func (n *negotiator) run(manager wayland.ObjectID, overlayCursor bool) error {
	frame, err := n.req.CaptureOutput(manager, overlayCursor, n.session.Output.ID)
	if err != nil {
		return err
	}
	n.frame = frame
	defer n.release()

	for !n.session.State.Terminal() {
		if err := n.req.Roundtrip(n.handle); err != nil {
			n.fail(err)
		}
	}
	return n.err
}

func (n *negotiator) handle(ev wayland.Event) {
	if n.session.State.Terminal() {
		return
	}
	switch e := ev.(type) {
	case wayland.FrameBuffer:
		if e.Frame != n.frame || n.session.State != AwaitingFormats {
			return
		}
		n.session.Formats = append(n.session.Formats, FrameFormat{
			Format: pixfmt.Format(e.Format),
			Width:  e.Width,
			Height: e.Height,
			Stride: e.Stride,
		})
	case wayland.FrameFlags:
		if e.Frame == n.frame {
			n.session.YInverted = e.Flags&wayland.FrameFlagYInvert != 0
		}
	case wayland.FrameBufferDone:
		if e.Frame != n.frame || n.session.State != AwaitingFormats {
			return
		}
		n.transition(FormatsAvailable)
		n.requestCopy()
	case wayland.FrameReady:
		if e.Frame != n.frame {
			return
		}
		if n.session.State != CopyRequested {
			n.fail(fmt.Errorf("%w: ready in state %s", ErrCaptureFailed, n.session.State))
			return
		}
		n.transition(Finished)
	case wayland.FrameFailed:
		if e.Frame == n.frame {
			n.fail(ErrCaptureFailed)
		}
	}
}

// selectFormat returns the first advertised layout that can be converted.
func selectFormat(formats []FrameFormat) (FrameFormat, bool) {
	for _, f := range formats {
		if f.Valid() {
			return f, true
		}
	}
	return FrameFormat{}, false
}

func (n *negotiator) requestCopy() {
	f, ok := selectFormat(n.session.Formats)
	if !ok {
		n.fail(fmt.Errorf("%w: offered %s", ErrUnsupportedFormat, formatList(n.session.Formats)))
		return
	}
	if f.Size() > math.MaxInt32 || f.Width > math.MaxInt32 || f.Height > math.MaxInt32 {
		n.fail(fmt.Errorf("%w: %dx%d frame too large", ErrCaptureFailed, f.Width, f.Height))
		return
	}
	n.session.Format = f
	n.log.Debug("selected buffer format", zap.Stringer("format", f.Format),
		zap.Uint32("width", f.Width), zap.Uint32("height", f.Height), zap.Uint32("stride", f.Stride))

	buf, err := allocateBuffer(int(f.Size()))
	if err != nil {
		n.fail(err)
		return
	}
	n.session.Buffer = buf

	if n.pool, err = n.req.CreatePool(n.shm, buf.Fd(), int32(f.Size())); err != nil {
		n.fail(err)
		return
	}
	if n.buffer, err = n.req.CreateBuffer(n.pool, 0, int32(f.Width), int32(f.Height), int32(f.Stride), uint32(f.Format)); err != nil {
		n.fail(err)
		return
	}
	if err := n.req.CopyFrame(n.frame, n.buffer); err != nil {
		n.fail(err)
		return
	}
	n.transition(CopyRequested)
}

func (n *negotiator) transition(to State) {
	n.log.Debug("capture state", zap.Stringer("from", n.session.State), zap.Stringer("to", to))
	n.session.State = to
}

func (n *negotiator) fail(err error) {
	if n.session.State.Terminal() {
		return
	}
	n.err = err
	n.transition(Failed)
}

// release destroys the protocol objects and, on failure, the shared memory.
func (n *negotiator) release() {
	for _, id := range []wayland.ObjectID{n.frame, n.buffer, n.pool} {
		if id == 0 {
			continue
		}
		if err := n.req.Destroy(id); err != nil {
			n.log.Debug("destroy", zap.Uint32("id", uint32(id)), zap.Error(err))
		}
	}
	if n.session.State == Failed && n.session.Buffer != nil {
		_ = n.session.Buffer.Close()
		n.session.Buffer = nil
	}
}

func formatList(formats []FrameFormat) string {
	if len(formats) == 0 {
		return "nothing"
	}
	s := ""
	for i, f := range formats {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %dx%d/%d", f.Format, f.Width, f.Height, f.Stride)
	}
	return s
}
