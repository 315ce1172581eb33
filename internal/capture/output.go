package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/wlshot/internal/wayland"
)

// ErrNoOutput reports that the display server advertises no usable output.
var ErrNoOutput = errors.New("no output available")

// OutputInfo describes one display output.
type OutputInfo struct {
	Index       int
	ID          wayland.ObjectID
	GlobalName  uint32
	Name        string
	Description string
	Make        string
	Model       string
	Rect        image.Rectangle
	Scale       int32
	Transform   int32
	Refresh     int32 // mHz
	Primary     bool
}

// Label is the most specific human-readable name available.
func (o OutputInfo) Label() string {
	switch {
	case o.Name != "":
		return o.Name
	case o.Description != "":
		return o.Description
	case o.Make != "" || o.Model != "":
		return strings.TrimSpace(o.Make + " " + o.Model)
	}
	return fmt.Sprintf("output-%d", o.Index)
}

// FindOutput resolves a selector against outputs. An empty selector picks
// the first output. Otherwise the selector is "primary", an index (optionally
// "#"-prefixed) or a case-insensitive substring of the name, description or
// make and model.
func FindOutput(outputs []OutputInfo, selector string) (OutputInfo, error) {
	if len(outputs) == 0 {
		return OutputInfo{}, ErrNoOutput
	}
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return outputs[0], nil
	}
	lower := strings.ToLower(sel)
	if lower == "primary" {
		for _, out := range outputs {
			if out.Primary {
				return out, nil
			}
		}
		return outputs[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(lower, "#")); err == nil {
		if idx < 0 || idx >= len(outputs) {
			return OutputInfo{}, fmt.Errorf("output index %d out of range", idx)
		}
		return outputs[idx], nil
	}
	for _, out := range outputs {
		if strings.EqualFold(out.Name, sel) {
			return out, nil
		}
	}
	for _, out := range outputs {
		for _, field := range []string{out.Name, out.Description, out.Make + " " + out.Model} {
			if strings.Contains(strings.ToLower(field), lower) {
				return out, nil
			}
		}
	}
	return OutputInfo{}, fmt.Errorf("output %q not found", selector)
}
