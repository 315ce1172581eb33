//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/example/wlshot/internal/pixfmt"
)

type x11Backend struct{}

func newX11Backend() x11Source {
	return x11Backend{}
}

func runningOnWayland() bool {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	if sessionType == "wayland" {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

type x11Conn struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
}

func openX11() (*x11Conn, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	return &x11Conn{conn: conn, setup: setup, screen: screen}, nil
}

// outputs lists the RandR monitors, or the whole root window when RandR is
// unavailable.
func (c *x11Conn) outputs() []OutputInfo {
	if monitors, err := fetchMonitors(c.conn, c.screen.Root); err == nil && len(monitors) > 0 {
		return monitors
	}
	return []OutputInfo{{
		Name:    "screen",
		Rect:    image.Rect(0, 0, int(c.screen.WidthInPixels), int(c.screen.HeightInPixels)),
		Scale:   1,
		Primary: true,
	}}
}

func (x11Backend) ListOutputs() ([]OutputInfo, error) {
	c, err := openX11()
	if err != nil {
		return nil, err
	}
	defer c.conn.Close()
	return c.outputs(), nil
}

func (x11Backend) Capture(selector string) (*image.RGBA, OutputInfo, error) {
	c, err := openX11()
	if err != nil {
		return nil, OutputInfo{}, err
	}
	defer c.conn.Close()

	out, err := FindOutput(c.outputs(), selector)
	if err != nil {
		return nil, OutputInfo{}, err
	}
	r := out.Rect
	if r.Empty() {
		return nil, OutputInfo{}, fmt.Errorf("output %s has empty geometry", out.Label())
	}
	reply, err := xproto.GetImage(c.conn, xproto.ImageFormatZPixmap, xproto.Drawable(c.screen.Root),
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), ^uint32(0)).Reply()
	if err != nil {
		return nil, OutputInfo{}, fmt.Errorf("screen pixels: %w", err)
	}
	img, err := xImageToRGBA(c.setup, reply, r.Dx(), r.Dy())
	if err != nil {
		return nil, OutputInfo{}, err
	}
	return img, out, nil
}

func fetchMonitors(conn *xgb.Conn, root xproto.Window) ([]OutputInfo, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	monitors := make([]OutputInfo, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, OutputInfo{
			Index:      len(monitors),
			GlobalName: uint32(output),
			Name:       strings.TrimSpace(string(info.Name)),
			Rect: image.Rect(
				int(crtc.X),
				int(crtc.Y),
				int(crtc.X)+int(crtc.Width),
				int(crtc.Y)+int(crtc.Height),
			),
			Scale:   1,
			Primary: output == primaryOutput,
		})
	}
	return monitors, nil
}

// xImageToRGBA converts a ZPixmap reply. 32 bpp pixmaps are stored like
// XRGB8888; packed 24 bpp pixmaps are B,G,R triples.
func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screen has empty geometry")
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("screen pixels: empty image data")
	}

	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	bpp := bitsPerPixel / 8
	if bpp != 3 && bpp != 4 {
		return nil, fmt.Errorf("unsupported screen depth %d (%d bpp)", reply.Depth, bitsPerPixel)
	}

	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bpp {
		return nil, fmt.Errorf("screen pixels: unexpected stride")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := reply.Data[y*stride : y*stride+width*bpp]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*4]
		if bpp == 4 {
			copy(dst, src)
			continue
		}
		for x := 0; x < width; x++ {
			copy(dst[x*4:x*4+3], src[x*3:x*3+3])
		}
	}
	pixfmt.Normalize(img.Pix, pixfmt.XRGB8888)
	pixfmt.ForceOpaque(img.Pix)
	return img, nil
}
