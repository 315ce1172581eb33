package wayland

// ObjectID identifies a protocol object created through a Transport.
type ObjectID uint32

// Global is a capability advertised by the compositor's registry.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Interface names bound by this client.
const (
	OutputInterface            = "wl_output"
	ShmInterface               = "wl_shm"
	ScreencopyManagerInterface = "zwlr_screencopy_manager_v1"
)

// Event is a decoded protocol event. The concrete types below are the only
// implementations.
type Event interface {
	event()
}

// GlobalAdded is wl_registry.global.
type GlobalAdded struct {
	Global Global
}

// GlobalRemoved is wl_registry.global_remove.
type GlobalRemoved struct {
	Name uint32
}

// OutputGeometry is wl_output.geometry.
type OutputGeometry struct {
	Output         ObjectID
	X, Y           int32
	PhysicalWidth  int32
	PhysicalHeight int32
	Make           string
	Model          string
	Transform      int32
}

// OutputMode is wl_output.mode.
type OutputMode struct {
	Output  ObjectID
	Current bool
	Width   int32
	Height  int32
	Refresh int32
}

// OutputScale is wl_output.scale.
type OutputScale struct {
	Output ObjectID
	Factor int32
}

// OutputName is wl_output.name.
type OutputName struct {
	Output ObjectID
	Name   string
}

// OutputDescription is wl_output.description.
type OutputDescription struct {
	Output      ObjectID
	Description string
}

// OutputDone is wl_output.done, sent after a batch of output properties.
type OutputDone struct {
	Output ObjectID
}

// FrameBuffer is zwlr_screencopy_frame_v1.buffer: one wl_shm format the
// compositor can copy into.
type FrameBuffer struct {
	Frame  ObjectID
	Format uint32
	Width  uint32
	Height uint32
	Stride uint32
}

// FrameLinuxDmabuf is zwlr_screencopy_frame_v1.linux_dmabuf.
type FrameLinuxDmabuf struct {
	Frame  ObjectID
	Format uint32
	Width  uint32
	Height uint32
}

// FrameBufferDone is zwlr_screencopy_frame_v1.buffer_done: no more buffer
// events follow for this frame.
type FrameBufferDone struct {
	Frame ObjectID
}

// FrameFlags is zwlr_screencopy_frame_v1.flags.
type FrameFlags struct {
	Frame ObjectID
	Flags uint32
}

// FrameDamage is zwlr_screencopy_frame_v1.damage.
type FrameDamage struct {
	Frame               ObjectID
	X, Y, Width, Height uint32
}

// FrameReady is zwlr_screencopy_frame_v1.ready.
type FrameReady struct {
	Frame ObjectID
	Sec   uint64
	Nsec  uint32
}

// FrameFailed is zwlr_screencopy_frame_v1.failed.
type FrameFailed struct {
	Frame ObjectID
}

// FrameFlagYInvert marks frames whose rows are stored bottom-up.
const FrameFlagYInvert uint32 = 1

func (GlobalAdded) event()       {}
func (GlobalRemoved) event()     {}
func (OutputGeometry) event()    {}
func (OutputMode) event()        {}
func (OutputScale) event()       {}
func (OutputName) event()        {}
func (OutputDescription) event() {}
func (OutputDone) event()        {}
func (FrameBuffer) event()       {}
func (FrameLinuxDmabuf) event()  {}
func (FrameBufferDone) event()   {}
func (FrameFlags) event()        {}
func (FrameDamage) event()       {}
func (FrameReady) event()        {}
func (FrameFailed) event()       {}
