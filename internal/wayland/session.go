// Package wayland holds the client side of the compositor connection: typed
// protocol events, the Transport that carries them, and the Session that
// tracks registry globals and drives round-trips.
package wayland

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrConnection reports that the display server could not be reached.
	ErrConnection = errors.New("connect to display server")
	// ErrMissingGlobal reports that a required interface is not advertised,
	// or only at a version that is too old.
	ErrMissingGlobal = errors.New("required global not advertised")
)

// Handler receives the non-registry events of a round-trip in arrival order.
type Handler func(Event)

// Session is one connection to the compositor.
type Session struct {
	transport Transport
	globals   []Global
	log       *zap.Logger
}

// Connect dials the compositor and performs the first round-trip so the
// registry globals are known when it returns.
func Connect(dial Dialer, display string, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t, err := dial(display)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	s := &Session{transport: t, log: log}
	if err := s.Roundtrip(nil); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	log.Debug("connected to compositor", zap.Int("globals", len(s.globals)))
	return s, nil
}

// Roundtrip processes everything the compositor sends until a full
// round-trip has completed. Registry events update the session; every other
// event goes to h.
func (s *Session) Roundtrip(h Handler) error {
	events, err := s.transport.Roundtrip()
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	for _, ev := range events {
		switch e := ev.(type) {
		case GlobalAdded:
			s.log.Debug("global", zap.String("interface", e.Global.Interface),
				zap.Uint32("name", e.Global.Name), zap.Uint32("version", e.Global.Version))
			s.globals = append(s.globals, e.Global)
		case GlobalRemoved:
			s.removeGlobal(e.Name)
		default:
			if h != nil {
				h(ev)
			}
		}
	}
	return nil
}

func (s *Session) removeGlobal(name uint32) {
	for i, g := range s.globals {
		if g.Name == name {
			s.globals = append(s.globals[:i], s.globals[i+1:]...)
			return
		}
	}
}

// Globals returns the advertised globals implementing iface, in
// advertisement order.
func (s *Session) Globals(iface string) []Global {
	var out []Global
	for _, g := range s.globals {
		if g.Interface == iface {
			out = append(out, g)
		}
	}
	return out
}

// Bind binds the first global implementing iface at the highest version both
// sides support, capped at maxVersion.
func (s *Session) Bind(iface string, minVersion, maxVersion uint32) (ObjectID, error) {
	found := s.Globals(iface)
	if len(found) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingGlobal, iface)
	}
	g := found[0]
	if g.Version < minVersion {
		return 0, fmt.Errorf("%w: %s version %d, need %d", ErrMissingGlobal, iface, g.Version, minVersion)
	}
	return s.BindGlobal(g, min(g.Version, maxVersion))
}

// BindGlobal binds g at version.
func (s *Session) BindGlobal(g Global, version uint32) (ObjectID, error) {
	id, err := s.transport.Bind(g, version)
	if err != nil {
		return 0, fmt.Errorf("bind %s: %w", g.Interface, err)
	}
	s.log.Debug("bound global", zap.String("interface", g.Interface), zap.Uint32("version", version))
	return id, nil
}

// CaptureOutput requests a frame of output.
func (s *Session) CaptureOutput(manager ObjectID, overlayCursor bool, output ObjectID) (ObjectID, error) {
	id, err := s.transport.CaptureOutput(manager, overlayCursor, output)
	if err != nil {
		return 0, fmt.Errorf("capture output: %w", err)
	}
	return id, nil
}

// CreatePool shares fd with the compositor as a wl_shm pool of size bytes.
func (s *Session) CreatePool(shm ObjectID, fd int, size int32) (ObjectID, error) {
	id, err := s.transport.CreatePool(shm, fd, size)
	if err != nil {
		return 0, fmt.Errorf("create pool: %w", err)
	}
	return id, nil
}

// CreateBuffer carves a buffer out of pool.
func (s *Session) CreateBuffer(pool ObjectID, offset, width, height, stride int32, format uint32) (ObjectID, error) {
	id, err := s.transport.CreateBuffer(pool, offset, width, height, stride, format)
	if err != nil {
		return 0, fmt.Errorf("create buffer: %w", err)
	}
	return id, nil
}

// CopyFrame asks the compositor to copy frame into buffer.
func (s *Session) CopyFrame(frame, buffer ObjectID) error {
	if err := s.transport.CopyFrame(frame, buffer); err != nil {
		return fmt.Errorf("copy frame: %w", err)
	}
	return nil
}

// Destroy destroys a protocol object.
func (s *Session) Destroy(id ObjectID) error {
	return s.transport.Destroy(id)
}

// Close disconnects from the compositor.
func (s *Session) Close() error {
	return s.transport.Close()
}
