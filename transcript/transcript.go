// Package transcript appends completed interactions to a plain-text log so
// a user can review what was captured and answered after the fact.
package transcript

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Writer appends interaction records to a single file. Safe for concurrent
// use, though the pipeline writes from one goroutine in practice.
type Writer struct {
	mu   sync.Mutex
	path string
}

// New returns a writer for path, or nil if path is empty (transcript
// logging disabled). A nil *Writer is safe to call.
func New(path string) *Writer {
	if path == "" {
		return nil
	}
	return &Writer{path: path}
}

// Record appends one question/answer interaction. Failures are returned so
// the caller can log them; a transcript failure never aborts the pipeline.
func (w *Writer) Record(question, model, answer string) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("\n\n=== %s ===\nInput Text:\n%s\n\nModel: %s\nResponse:\n%s\n",
		time.Now().Format(time.RFC3339), question, model, answer)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
