package wayland

// Transport is the wire-level connection to the compositor. It frames
// requests and decodes events; it holds no capture state.
type Transport interface {
	// Roundtrip flushes pending requests, blocks until the compositor has
	// answered a wl_display.sync and returns every event received meanwhile,
	// in arrival order.
	Roundtrip() ([]Event, error)
	// Bind binds a registry global at the given version.
	Bind(g Global, version uint32) (ObjectID, error)
	// CaptureOutput issues zwlr_screencopy_manager_v1.capture_output and
	// returns the new frame.
	CaptureOutput(manager ObjectID, overlayCursor bool, output ObjectID) (ObjectID, error)
	// CreatePool issues wl_shm.create_pool for fd.
	CreatePool(shm ObjectID, fd int, size int32) (ObjectID, error)
	// CreateBuffer issues wl_shm_pool.create_buffer.
	CreateBuffer(pool ObjectID, offset, width, height, stride int32, format uint32) (ObjectID, error)
	// CopyFrame issues zwlr_screencopy_frame_v1.copy.
	CopyFrame(frame, buffer ObjectID) error
	// Destroy destroys a frame, buffer, pool or screencopy manager.
	Destroy(id ObjectID) error
	// Close tears the connection down.
	Close() error
}

// Dialer opens a Transport. An empty display selects the environment default.
type Dialer func(display string) (Transport, error)
