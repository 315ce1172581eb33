// Package encode serializes captured frames for the output sink.
package encode

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// DefaultQuality is used when no quality is configured.
const DefaultQuality = 90

var (
	// ErrEncode reports that the image could not be compressed.
	ErrEncode = errors.New("encode image")
	// ErrIO reports that the compressed stream could not be written.
	ErrIO = errors.New("write image")
)

// ClampQuality limits q to the JPEG range 1..100. Zero selects DefaultQuality.
func ClampQuality(q int) int {
	switch {
	case q == 0:
		return DefaultQuality
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}

// JPEG compresses img and writes the whole stream to w, flushing before it
// returns.
func JPEG(w io.Writer, img image.Image, quality int) error {
	sink := &recordingWriter{w: w}
	bw := bufio.NewWriterSize(sink, 64*1024)
	if err := jpeg.Encode(bw, img, &jpeg.Options{Quality: ClampQuality(quality)}); err != nil {
		if sink.err != nil {
			return fmt.Errorf("%w: %w", ErrIO, sink.err)
		}
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// recordingWriter remembers the first write error so encoder failures can be
// told apart from sink failures.
type recordingWriter struct {
	w   io.Writer
	err error
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		r.err = err
	}
	return n, err
}
