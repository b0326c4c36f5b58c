package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/kbinani/screenshot"
)

// CaptureError reports a failed screen grab. The pipeline recovers from it:
// the state machine returns to idle and the error is surfaced, never fatal.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("screen capture failed: %v", e.Err) }
func (e *CaptureError) Unwrap() error { return e.Err }

// CaptureRequest is one triggered capture: a timestamp and the grabbed
// pixels encoded as PNG. It lives only until OCR consumes it.
type CaptureRequest struct {
	Timestamp time.Time
	PNG       []byte
}

// Grab captures the entire virtual screen across all active displays and
// encodes it as PNG.
func Grab() (CaptureRequest, error) {
	img, err := captureVirtualScreen()
	if err != nil {
		return CaptureRequest{}, &CaptureError{Err: err}
	}
	data, err := EncodePNG(img)
	if err != nil {
		return CaptureRequest{}, &CaptureError{Err: err}
	}
	return CaptureRequest{Timestamp: time.Now(), PNG: data}, nil
}

func captureVirtualScreen() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return screenshot.CaptureRect(union)
}

// EncodePNG converts a captured image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
