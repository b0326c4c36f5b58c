//go:build !windows

package display

import "log"

// logSurface writes display updates to the application log. Capture
// exclusion has no portable equivalent, so non-Windows builds fall back to
// log output for development use.
type logSurface struct{}

func NewWindow() (Surface, error) {
	return logSurface{}, nil
}

func (logSurface) SetText(text string) {
	log.Printf("Display:\n%s", text)
}

func (logSurface) Clear() {
	log.Printf("Display: cleared")
}

func (logSurface) Close() {}
