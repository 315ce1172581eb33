package capture

import (
	"image"

	"go.uber.org/zap"

	"github.com/example/wlshot/internal/wayland"
)

const (
	// wl_output.done exists from version 2.
	minOutputVersion = 2
	maxOutputVersion = 4
)

type outputState int

const (
	outputPending outputState = iota
	outputDescribed
)

type discoveredOutput struct {
	info   OutputInfo
	x, y   int32
	width  int32
	height int32
	state  outputState
}

func (d *discoveredOutput) apply(ev wayland.Event) {
	switch e := ev.(type) {
	case wayland.OutputGeometry:
		d.x, d.y = e.X, e.Y
		d.info.Make = e.Make
		d.info.Model = e.Model
		d.info.Transform = e.Transform
	case wayland.OutputMode:
		if !e.Current {
			return
		}
		d.width, d.height = e.Width, e.Height
		d.info.Refresh = e.Refresh
	case wayland.OutputScale:
		d.info.Scale = e.Factor
	case wayland.OutputName:
		d.info.Name = e.Name
	case wayland.OutputDescription:
		d.info.Description = e.Description
	case wayland.OutputDone:
		d.info.Rect = image.Rect(int(d.x), int(d.y), int(d.x+d.width), int(d.y+d.height))
		d.state = outputDescribed
	}
}

func outputOf(ev wayland.Event) (wayland.ObjectID, bool) {
	switch e := ev.(type) {
	case wayland.OutputGeometry:
		return e.Output, true
	case wayland.OutputMode:
		return e.Output, true
	case wayland.OutputScale:
		return e.Output, true
	case wayland.OutputName:
		return e.Output, true
	case wayland.OutputDescription:
		return e.Output, true
	case wayland.OutputDone:
		return e.Output, true
	}
	return 0, false
}

// DiscoverOutputs binds every advertised wl_output and round-trips until each
// has been fully described. Outputs keep advertisement order; the first is
// reported as primary.
func DiscoverOutputs(s *wayland.Session, log *zap.Logger) ([]OutputInfo, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var outputs []*discoveredOutput
	byID := make(map[wayland.ObjectID]*discoveredOutput)
	for _, g := range s.Globals(wayland.OutputInterface) {
		if g.Version < minOutputVersion {
			log.Warn("skipping output with old protocol version",
				zap.Uint32("name", g.Name), zap.Uint32("version", g.Version))
			continue
		}
		id, err := s.BindGlobal(g, min(g.Version, maxOutputVersion))
		if err != nil {
			return nil, err
		}
		d := &discoveredOutput{info: OutputInfo{
			Index:      len(outputs),
			ID:         id,
			GlobalName: g.Name,
			Scale:      1,
			Primary:    len(outputs) == 0,
		}}
		outputs = append(outputs, d)
		byID[id] = d
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutput
	}

	pending := len(outputs)
	for pending > 0 {
		err := s.Roundtrip(func(ev wayland.Event) {
			id, ok := outputOf(ev)
			if !ok {
				return
			}
			d, ok := byID[id]
			if !ok || d.state == outputDescribed {
				return
			}
			d.apply(ev)
			if d.state == outputDescribed {
				pending--
			}
		})
		if err != nil {
			return nil, err
		}
	}

	infos := make([]OutputInfo, len(outputs))
	for i, d := range outputs {
		infos[i] = d.info
		log.Debug("output", zap.Int("index", i), zap.String("name", d.info.Label()),
			zap.Stringer("rect", d.info.Rect), zap.Int32("scale", d.info.Scale))
	}
	return infos, nil
}
