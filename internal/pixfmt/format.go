// Package pixfmt describes wl_shm pixel formats and converts captured frames
// into the RGBA byte order image.RGBA expects.
package pixfmt

import "fmt"

// Format is a wl_shm pixel format code. ARGB8888 and XRGB8888 use the legacy
// codes 0 and 1, every other format is its DRM fourcc.
type Format uint32

const (
	ARGB8888    Format = 0
	XRGB8888    Format = 1
	ABGR8888    Format = 0x34324241 // AB24
	XBGR8888    Format = 0x34324258 // XB24
	RGBA8888    Format = 0x34324152 // RA24
	BGRA8888    Format = 0x34324142 // BA24
	RGB888      Format = 0x34324752 // RG24
	BGR888      Format = 0x34324742 // BG24
	XRGB2101010 Format = 0x30335258 // XR30
)

// Supported lists the formats a frame may be copied into.
var Supported = []Format{ARGB8888, XRGB8888, ABGR8888, XBGR8888}

// IsSupported reports whether f can be normalized.
func (f Format) IsSupported() bool {
	for _, s := range Supported {
		if s == f {
			return true
		}
	}
	return false
}

// BytesPerPixel returns the storage size of one pixel, or 0 when unknown.
func (f Format) BytesPerPixel() int {
	switch f {
	case ARGB8888, XRGB8888, ABGR8888, XBGR8888, RGBA8888, BGRA8888, XRGB2101010:
		return 4
	case RGB888, BGR888:
		return 3
	default:
		return 0
	}
}

// HasAlpha reports whether the fourth byte carries meaningful alpha.
func (f Format) HasAlpha() bool {
	switch f {
	case ARGB8888, ABGR8888, RGBA8888, BGRA8888:
		return true
	}
	return false
}

// swapsRB reports whether the little-endian memory layout stores blue before red.
func (f Format) swapsRB() bool {
	return f == ARGB8888 || f == XRGB8888
}

func (f Format) String() string {
	switch f {
	case ARGB8888:
		return "argb8888"
	case XRGB8888:
		return "xrgb8888"
	case ABGR8888:
		return "abgr8888"
	case XBGR8888:
		return "xbgr8888"
	case RGBA8888:
		return "rgba8888"
	case BGRA8888:
		return "bgra8888"
	case RGB888:
		return "rgb888"
	case BGR888:
		return "bgr888"
	case XRGB2101010:
		return "xrgb2101010"
	}
	if f > 0xffff {
		return fmt.Sprintf("fourcc(%c%c%c%c)", byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}
