package capture

import (
	"fmt"
	"image"

	"github.com/example/wlshot/internal/pixfmt"
)

// Image copies the finished frame out of shared memory as RGBA. Rows are
// flipped for y-inverted frames and X formats are made opaque.
func (cs *CaptureSession) Image() (*image.RGBA, error) {
	if cs.State != Finished {
		return nil, fmt.Errorf("%w: frame is %s", ErrCaptureFailed, cs.State)
	}
	data, err := cs.Buffer.Map()
	if err != nil {
		return nil, fmt.Errorf("map frame: %w", err)
	}
	f := cs.Format
	width, height, stride := int(f.Width), int(f.Height), int(f.Stride)
	if len(data) < stride*height {
		return nil, fmt.Errorf("frame buffer holds %d bytes, need %d", len(data), stride*height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := y
		if cs.YInverted {
			src = height - 1 - y
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+row], data[src*stride:src*stride+row])
	}
	pixfmt.Normalize(img.Pix, f.Format)
	if !f.Format.HasAlpha() {
		pixfmt.ForceOpaque(img.Pix)
	}
	return img, nil
}
