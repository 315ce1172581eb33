package pixfmt

import "fmt"

// Normalize rewrites pix in place so every 4-byte group is ordered R, G, B, A.
// Formats outside Supported must be rejected before a frame is copied; passing
// one here is a bug and panics.
func Normalize(pix []byte, f Format) {
	if !f.IsSupported() {
		panic(fmt.Sprintf("pixfmt: normalize called with unsupported format %s", f))
	}
	if f.swapsRB() {
		SwapRB(pix)
	}
}

// SwapRB exchanges the first and third byte of every 4-byte group. Applying it
// twice restores the input. A trailing partial group is left untouched.
func SwapRB(pix []byte) {
	n := len(pix) &^ 3
	for i := 0; i < n; i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// ForceOpaque sets the alpha byte of every 4-byte group to 0xFF. Frames in X
// formats leave that byte undefined.
func ForceOpaque(pix []byte) {
	n := len(pix) &^ 3
	for i := 3; i < n; i += 4 {
		pix[i] = 0xFF
	}
}
