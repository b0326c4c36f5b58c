// Package display renders pipeline status and answers in an always-on-top
// window that is excluded from screen capture. On platforms without the
// capture-exclusion API a logging fallback is used instead.
package display

// Surface is the output target for pipeline state and results. All methods
// are non-blocking and safe to call from any goroutine.
type Surface interface {
	// SetText replaces the displayed text and makes the surface visible.
	SetText(text string)
	// Clear hides the surface and discards the displayed text.
	Clear()
	// Close tears the surface down. No calls may follow.
	Close()
}

// Status texts shown while a pipeline run is in flight.
const (
	StatusCapturing  = "Capturing screen..."
	StatusExtracting = "Reading text from screen..."
	StatusAnswering  = "Thinking..."
)
