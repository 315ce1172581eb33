//go:build linux || freebsd || openbsd || netbsd || dragonfly

package wayland

import (
	"errors"
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/example/wlshot/internal/wayland/screencopy"
)

var errUnknownObject = errors.New("unknown protocol object")

// goWayland is the Transport backed by a real compositor socket.
type goWayland struct {
	display  *client.Display
	ctx      *client.Context
	registry *client.Registry
	objects  map[ObjectID]any
	queue    []Event
	fatal    error
}

// Dial connects to the compositor named by display, or by WAYLAND_DISPLAY
// when display is empty.
func Dial(display string) (Transport, error) {
	d, err := client.Connect(display)
	if err != nil {
		return nil, err
	}
	t := &goWayland{
		display: d,
		ctx:     d.Context(),
		objects: make(map[ObjectID]any),
	}
	d.SetErrorHandler(func(e client.DisplayErrorEvent) {
		t.fatal = fmt.Errorf("protocol error %d: %s", e.Code, e.Message)
	})
	registry, err := d.GetRegistry()
	if err != nil {
		_ = t.ctx.Close()
		return nil, fmt.Errorf("get registry: %w", err)
	}
	t.registry = registry
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		t.queue = append(t.queue, GlobalAdded{Global: Global{Name: e.Name, Interface: e.Interface, Version: e.Version}})
	})
	registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		t.queue = append(t.queue, GlobalRemoved{Name: e.Name})
	})
	return t, nil
}

func (t *goWayland) Roundtrip() ([]Event, error) {
	cb, err := t.display.Sync()
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}
	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done {
		if err := t.ctx.Dispatch(); err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		if t.fatal != nil {
			return nil, t.fatal
		}
	}
	events := t.queue
	t.queue = nil
	return events, nil
}

func (t *goWayland) push(ev Event) {
	t.queue = append(t.queue, ev)
}

func (t *goWayland) Bind(g Global, version uint32) (ObjectID, error) {
	var proxy client.Proxy
	switch g.Interface {
	case OutputInterface:
		o := client.NewOutput(t.ctx)
		t.watchOutput(o)
		proxy = o
	case ShmInterface:
		proxy = client.NewShm(t.ctx)
	case ScreencopyManagerInterface:
		proxy = screencopy.NewManager(t.ctx)
	default:
		return 0, fmt.Errorf("bind %s: unsupported interface", g.Interface)
	}
	if err := t.registry.Bind(g.Name, g.Interface, version, proxy); err != nil {
		return 0, err
	}
	id := ObjectID(proxy.ID())
	t.objects[id] = proxy
	return id, nil
}

func (t *goWayland) watchOutput(o *client.Output) {
	id := ObjectID(o.ID())
	o.SetGeometryHandler(func(e client.OutputGeometryEvent) {
		t.push(OutputGeometry{
			Output: id, X: e.X, Y: e.Y,
			PhysicalWidth: e.PhysicalWidth, PhysicalHeight: e.PhysicalHeight,
			Make: e.Make, Model: e.Model, Transform: int32(e.Transform),
		})
	})
	o.SetModeHandler(func(e client.OutputModeEvent) {
		t.push(OutputMode{
			Output:  id,
			Current: e.Flags&uint32(client.OutputModeCurrent) != 0,
			Width:   e.Width, Height: e.Height, Refresh: e.Refresh,
		})
	})
	o.SetScaleHandler(func(e client.OutputScaleEvent) {
		t.push(OutputScale{Output: id, Factor: e.Factor})
	})
	o.SetNameHandler(func(e client.OutputNameEvent) {
		t.push(OutputName{Output: id, Name: e.Name})
	})
	o.SetDescriptionHandler(func(e client.OutputDescriptionEvent) {
		t.push(OutputDescription{Output: id, Description: e.Description})
	})
	o.SetDoneHandler(func(client.OutputDoneEvent) {
		t.push(OutputDone{Output: id})
	})
}

func (t *goWayland) CaptureOutput(manager ObjectID, overlayCursor bool, output ObjectID) (ObjectID, error) {
	m, ok := t.objects[manager].(*screencopy.Manager)
	if !ok {
		return 0, fmt.Errorf("%w: manager %d", errUnknownObject, manager)
	}
	o, ok := t.objects[output].(*client.Output)
	if !ok {
		return 0, fmt.Errorf("%w: output %d", errUnknownObject, output)
	}
	frame, err := m.CaptureOutput(overlayCursor, o)
	if err != nil {
		return 0, err
	}
	id := ObjectID(frame.ID())
	t.objects[id] = frame
	frame.SetBufferHandler(func(e screencopy.BufferEvent) {
		t.push(FrameBuffer{Frame: id, Format: e.Format, Width: e.Width, Height: e.Height, Stride: e.Stride})
	})
	frame.SetLinuxDmabufHandler(func(e screencopy.LinuxDmabufEvent) {
		t.push(FrameLinuxDmabuf{Frame: id, Format: e.Format, Width: e.Width, Height: e.Height})
	})
	frame.SetBufferDoneHandler(func(screencopy.BufferDoneEvent) {
		t.push(FrameBufferDone{Frame: id})
	})
	frame.SetFlagsHandler(func(e screencopy.FlagsEvent) {
		t.push(FrameFlags{Frame: id, Flags: e.Flags})
	})
	frame.SetDamageHandler(func(e screencopy.DamageEvent) {
		t.push(FrameDamage{Frame: id, X: e.X, Y: e.Y, Width: e.Width, Height: e.Height})
	})
	frame.SetReadyHandler(func(e screencopy.ReadyEvent) {
		t.push(FrameReady{Frame: id, Sec: uint64(e.TvSecHi)<<32 | uint64(e.TvSecLo), Nsec: e.TvNsec})
	})
	frame.SetFailedHandler(func(screencopy.FailedEvent) {
		t.push(FrameFailed{Frame: id})
	})
	return id, nil
}

func (t *goWayland) CreatePool(shm ObjectID, fd int, size int32) (ObjectID, error) {
	s, ok := t.objects[shm].(*client.Shm)
	if !ok {
		return 0, fmt.Errorf("%w: shm %d", errUnknownObject, shm)
	}
	pool, err := s.CreatePool(fd, size)
	if err != nil {
		return 0, err
	}
	id := ObjectID(pool.ID())
	t.objects[id] = pool
	return id, nil
}

func (t *goWayland) CreateBuffer(pool ObjectID, offset, width, height, stride int32, format uint32) (ObjectID, error) {
	p, ok := t.objects[pool].(*client.ShmPool)
	if !ok {
		return 0, fmt.Errorf("%w: pool %d", errUnknownObject, pool)
	}
	buf, err := p.CreateBuffer(offset, width, height, stride, format)
	if err != nil {
		return 0, err
	}
	id := ObjectID(buf.ID())
	t.objects[id] = buf
	return id, nil
}

func (t *goWayland) CopyFrame(frame, buffer ObjectID) error {
	f, ok := t.objects[frame].(*screencopy.Frame)
	if !ok {
		return fmt.Errorf("%w: frame %d", errUnknownObject, frame)
	}
	b, ok := t.objects[buffer].(*client.Buffer)
	if !ok {
		return fmt.Errorf("%w: buffer %d", errUnknownObject, buffer)
	}
	return f.Copy(b)
}

func (t *goWayland) Destroy(id ObjectID) error {
	obj, ok := t.objects[id]
	if !ok {
		return fmt.Errorf("%w: %d", errUnknownObject, id)
	}
	delete(t.objects, id)
	switch o := obj.(type) {
	case *screencopy.Frame:
		return o.Destroy()
	case *screencopy.Manager:
		return o.Destroy()
	case *client.Buffer:
		return o.Destroy()
	case *client.ShmPool:
		return o.Destroy()
	}
	return nil
}

func (t *goWayland) Close() error {
	return t.ctx.Close()
}
