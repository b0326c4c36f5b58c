// Package session holds the conversational state accumulated across
// capture cycles. The controller's loop goroutine is the sole reader and
// writer, so the type needs no internal locking; worker goroutines only
// ever receive copies from History.
package session

// Exchange is one completed question/answer pair.
type Exchange struct {
	Question string
	Answer   string
}

// Session tracks the last extracted text and a bounded history of completed
// exchanges used as context for followup captures.
type Session struct {
	lastCapturedText string
	history          []Exchange
	maxTurns         int
}

// New creates a session keeping at most maxTurns exchanges. A non-positive
// maxTurns disables history entirely.
func New(maxTurns int) *Session {
	return &Session{maxTurns: maxTurns}
}

// RecordCapture stores the most recent extracted text before answering.
func (s *Session) RecordCapture(text string) {
	s.lastCapturedText = text
}

// RecordAnswer completes the current exchange and appends it to history,
// evicting the oldest exchange when the bound is exceeded.
func (s *Session) RecordAnswer(answer string) {
	if s.maxTurns <= 0 {
		return
	}
	s.history = append(s.history, Exchange{
		Question: s.lastCapturedText,
		Answer:   answer,
	})
	if len(s.history) > s.maxTurns {
		s.history = s.history[len(s.history)-s.maxTurns:]
	}
}

// LastCapturedText returns the text extracted by the most recent capture.
func (s *Session) LastCapturedText() string {
	return s.lastCapturedText
}

// History returns a copy of the completed exchanges, oldest first.
func (s *Session) History() []Exchange {
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the last captured text. History is also discarded unless
// preserveHistory is set.
func (s *Session) Reset(preserveHistory bool) {
	s.lastCapturedText = ""
	if !preserveHistory {
		s.history = nil
	}
}
