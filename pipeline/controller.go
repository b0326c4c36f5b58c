// Package pipeline orchestrates the capture, extract, answer, display cycle.
// A single loop goroutine owns all mutable state; hotkey callbacks and
// worker completions reach it through channels.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"screen-assistant/display"
	"screen-assistant/llm"
	"screen-assistant/logutil"
	"screen-assistant/ocr"
	"screen-assistant/screenshot"
	"screen-assistant/session"
	"screen-assistant/transcript"
)

// State is the controller's position in the capture cycle.
type State int32

const (
	// StateIdle accepts capture requests; nothing is displayed.
	StateIdle State = iota
	// StateCapturing through StateAnswering are busy states. Capture
	// requests arriving in them are dropped, never queued.
	StateCapturing
	StateExtracting
	StateAnswering
	// StateDisplaying is the rest state after a successful cycle: the answer
	// stays on screen and capture requests are accepted exactly as in
	// StateIdle. Reset clears the display and returns to StateIdle.
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateExtracting:
		return "extracting"
	case StateAnswering:
		return "answering"
	case StateDisplaying:
		return "displaying"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// CaptureFunc produces a PNG screenshot of the full virtual screen.
type CaptureFunc func() (screenshot.CaptureRequest, error)

// ExtractFunc turns a screenshot into text.
type ExtractFunc func(ctx context.Context, png []byte) (string, error)

// AnswerFunc answers extracted text given prior exchanges.
type AnswerFunc func(ctx context.Context, text string, history []session.Exchange) (string, error)

type eventKind int

const (
	eventCapture eventKind = iota
	eventReset
	eventQuit
)

// runUpdate is a worker report: a stage transition while done is false, the
// final outcome when done is true. Both flow through one channel so the loop
// goroutine sees them in the order the worker produced them, and all state,
// display, and Session mutations stay on the loop goroutine.
type runUpdate struct {
	gen    uint64
	state  State
	status string

	done     bool
	question string
	answer   string
	err      error
}

// Config wires the controller's collaborators.
type Config struct {
	Capture    CaptureFunc
	Extract    ExtractFunc
	Answer     AnswerFunc
	Display    display.Surface
	Session    *session.Session
	Transcript *transcript.Writer
	// CopyAnswer receives each successful answer; nil disables copying.
	CopyAnswer func(string)
	// Model is recorded in the transcript.
	Model string
	// PreserveHistoryOnReset keeps past exchanges across resets.
	PreserveHistoryOnReset bool
}

// Controller runs at most one pipeline cycle at a time. Hotkey callbacks
// post events; Run consumes them until quit or context cancellation.
type Controller struct {
	cfg Config

	events  chan eventKind
	updates chan runUpdate
	state   atomic.Int32
	gen     atomic.Uint64

	cancelRun context.CancelFunc
}

func New(cfg Config) *Controller {
	return &Controller{
		cfg:     cfg,
		events:  make(chan eventKind, 8),
		updates: make(chan runUpdate, 4),
	}
}

// State reports the current pipeline state. Safe from any goroutine.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// OnCaptureHotkey requests a new cycle. Non-blocking; drops when the event
// queue is full.
func (c *Controller) OnCaptureHotkey() { c.post(eventCapture) }

// OnResetHotkey clears the display and session and abandons any in-flight
// cycle.
func (c *Controller) OnResetHotkey() { c.post(eventReset) }

// OnQuitHotkey asks Run to return.
func (c *Controller) OnQuitHotkey() { c.post(eventQuit) }

func (c *Controller) post(ev eventKind) {
	select {
	case c.events <- ev:
	default:
		log.Printf("Pipeline: event queue full, dropping event %d", ev)
	}
}

// Run processes events until a quit event arrives or ctx is canceled.
// It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	defer c.abandonRun()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-c.events:
			switch ev {
			case eventCapture:
				c.handleCapture(ctx)
			case eventReset:
				c.handleReset()
			case eventQuit:
				log.Printf("Pipeline: quit requested")
				return nil
			}

		case u := <-c.updates:
			if u.done {
				c.handleResult(u)
			} else {
				c.handleStage(u)
			}
		}
	}
}

func (c *Controller) handleCapture(ctx context.Context) {
	state := c.State()
	if state != StateIdle && state != StateDisplaying {
		log.Printf("Pipeline: capture ignored, cycle already in progress (state=%s)", state)
		return
	}

	gen := c.gen.Add(1)
	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel

	c.setState(StateCapturing)
	c.cfg.Display.SetText(display.StatusCapturing)
	log.Printf("Pipeline: starting cycle %d", gen)

	// Snapshot the history here: the worker must never touch the Session,
	// which only the loop goroutine owns.
	history := c.cfg.Session.History()
	go c.runCycle(runCtx, gen, history)
}

// runCycle executes one capture cycle off the loop goroutine. It works only
// on the history snapshot it was handed and reports progress and results
// back through channels; all Session, state, and display mutations stay on
// the loop goroutine.
func (c *Controller) runCycle(ctx context.Context, gen uint64, history []session.Exchange) {
	question, answer, err := c.executeStages(ctx, gen, history)
	select {
	case c.updates <- runUpdate{gen: gen, done: true, question: question, answer: answer, err: err}:
	case <-ctx.Done():
	}
}

func (c *Controller) executeStages(ctx context.Context, gen uint64, history []session.Exchange) (question, answer string, err error) {
	shot, err := c.cfg.Capture()
	if err != nil {
		return "", "", err
	}

	c.publishStage(ctx, gen, StateExtracting, display.StatusExtracting)
	question, err = c.cfg.Extract(ctx, shot.PNG)
	if err != nil {
		return "", "", err
	}
	log.Printf("Pipeline: extracted %d characters: %s", len(question), logutil.Snippet(question, 200))

	c.publishStage(ctx, gen, StateAnswering, display.StatusAnswering)
	answer, err = c.cfg.Answer(ctx, question, history)
	if err != nil {
		return question, "", err
	}
	return question, answer, nil
}

// publishStage posts a stage transition to the loop goroutine. A canceled
// run stops publishing; the loop additionally drops updates whose
// generation is stale, so a reset processed after the post wins.
func (c *Controller) publishStage(ctx context.Context, gen uint64, state State, status string) {
	select {
	case c.updates <- runUpdate{gen: gen, state: state, status: status}:
	case <-ctx.Done():
	}
}

func (c *Controller) handleStage(u runUpdate) {
	if u.gen != c.gen.Load() {
		log.Printf("Pipeline: dropping stale stage update from cycle %d", u.gen)
		return
	}
	c.setState(u.state)
	c.cfg.Display.SetText(u.status)
}

func (c *Controller) handleResult(u runUpdate) {
	if u.gen != c.gen.Load() {
		log.Printf("Pipeline: dropping stale result from cycle %d", u.gen)
		return
	}
	c.abandonRun()

	if u.err != nil {
		log.Printf("Pipeline: cycle %d failed: %v", u.gen, u.err)
		c.cfg.Display.SetText(friendlyError(u.err))
		c.setState(StateIdle)
		return
	}

	c.cfg.Session.RecordCapture(u.question)
	c.cfg.Session.RecordAnswer(u.answer)
	c.cfg.Display.SetText(u.answer)
	c.setState(StateDisplaying)
	log.Printf("Pipeline: cycle %d complete, answer %d characters", u.gen, len(u.answer))

	if c.cfg.CopyAnswer != nil {
		c.cfg.CopyAnswer(u.answer)
	}
	if err := c.cfg.Transcript.Record(u.question, c.cfg.Model, u.answer); err != nil {
		log.Printf("Pipeline: transcript write failed: %v", err)
	}
}

func (c *Controller) handleReset() {
	log.Printf("Pipeline: reset")
	c.gen.Add(1) // invalidates any in-flight cycle
	c.abandonRun()
	c.cfg.Session.Reset(c.cfg.PreserveHistoryOnReset)
	c.cfg.Display.Clear()
	c.setState(StateIdle)
}

func (c *Controller) abandonRun() {
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

// friendlyError maps pipeline failures to short messages suitable for the
// display surface. Full details go to the log only.
func friendlyError(err error) string {
	var captureErr *screenshot.CaptureError
	var remoteErr *llm.RemoteServiceError

	switch {
	case errors.Is(err, ocr.ErrNoText):
		return "No text was extracted from the screen."
	case errors.As(err, &captureErr):
		return "Screen capture failed. Try again."
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("The %s service is unavailable. Try again.", remoteErr.Service)
	case errors.Is(err, context.Canceled):
		return ""
	default:
		return "Something went wrong. Try again."
	}
}
