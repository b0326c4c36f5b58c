package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// RegistrationError reports a hotkey combination that cannot be registered.
// It is fatal at startup: a binding the OS will never deliver is a
// misconfiguration, not a runtime condition.
type RegistrationError struct {
	Combo  string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register hotkey %q: %s", e.Combo, e.Reason)
}

// key is one physical key of a combination with the rawcodes that may
// produce it (modifiers have left/right variants).
type key struct {
	name     string
	rawcodes []uint16
}

type binding struct {
	combo    string
	keys     []key
	pressed  []bool
	callback func()
}

// Listener owns the single gohook event stream and dispatches combination
// matches to bound callbacks. gohook.Start may only be called once per
// process, so all combinations share one listener.
type Listener struct {
	mu       sync.Mutex
	bindings []*binding
	started  bool
}

func NewListener() *Listener {
	return &Listener{}
}

// Bind registers a callback for a combination like "Ctrl+Alt+R". All Bind
// calls must happen before Start. The callback runs on the hook goroutine
// and must not block; post into a channel and return.
func (l *Listener) Bind(combo string, callback func()) error {
	names, err := ParseCombo(combo)
	if err != nil {
		return err
	}

	b := &binding{combo: combo, callback: callback}
	for _, name := range names {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			return &RegistrationError{Combo: combo, Reason: fmt.Sprintf("unknown key %q", name)}
		}
		b.keys = append(b.keys, key{name: name, rawcodes: rawcodes})
	}
	b.pressed = make([]bool, len(b.keys))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return &RegistrationError{Combo: combo, Reason: "listener already started"}
	}
	l.bindings = append(l.bindings, b)
	return nil
}

// Start launches the hook goroutine. It returns a RegistrationError when the
// OS hook cannot be installed.
func (l *Listener) Start() error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return nil
	}
	if len(l.bindings) == 0 {
		l.mu.Unlock()
		return &RegistrationError{Combo: "", Reason: "no hotkeys bound"}
	}
	l.started = true
	l.mu.Unlock()

	evChan := gohook.Start()
	if evChan == nil {
		return &RegistrationError{Combo: "", Reason: "OS keyboard hook unavailable"}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("hotkey: panic in hook goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				l.handleKeyDown(ev.Rawcode)
			case gohook.KeyUp:
				l.handleKeyUp(ev.Rawcode)
			}
		}
		log.Printf("hotkey: event channel closed")
	}()

	return nil
}

// Stop uninstalls the OS hook. Registered callbacks stop firing.
func (l *Listener) Stop() {
	l.mu.Lock()
	started := l.started
	l.started = false
	l.mu.Unlock()
	if started {
		gohook.End()
	}
}

func (l *Listener) handleKeyDown(rawcode uint16) {
	var fire []func()

	l.mu.Lock()
	for _, b := range l.bindings {
		matched := false
		for i := range b.keys {
			for _, rc := range b.keys[i].rawcodes {
				if rc == rawcode {
					b.pressed[i] = true
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		if allPressed(b.pressed) {
			log.Printf("hotkey: combination %s detected", b.combo)
			for i := range b.pressed {
				b.pressed[i] = false
			}
			if b.callback != nil {
				fire = append(fire, b.callback)
			}
		}
	}
	l.mu.Unlock()

	// Invoke outside the lock so callbacks cannot deadlock against Bind/Stop.
	for _, cb := range fire {
		cb()
	}
}

func (l *Listener) handleKeyUp(rawcode uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bindings {
		for i := range b.keys {
			for _, rc := range b.keys[i].rawcodes {
				if rc == rawcode {
					b.pressed[i] = false
					break
				}
			}
		}
	}
}

func allPressed(pressed []bool) bool {
	for _, p := range pressed {
		if !p {
			return false
		}
	}
	return true
}

// ParseCombo normalizes a combination like "Ctrl+Alt+Enter" into lowercase
// key names: modifiers first (as written), final part is the key. Grammar is
// Modifier(+Modifier)*+Key with modifiers from {Ctrl, Alt, Win, Shift}; a
// bare key or a modifier-only chord is a misconfiguration.
func ParseCombo(combo string) ([]string, error) {
	parts := strings.Split(strings.ToLower(combo), "+")
	var names []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &RegistrationError{Combo: combo, Reason: "empty key name"}
		}
		names = append(names, normalizeKeyName(part))
	}
	if len(names) < 2 {
		return nil, &RegistrationError{Combo: combo, Reason: "combination needs at least one modifier and a key"}
	}
	for _, name := range names[:len(names)-1] {
		if !isModifier(name) {
			return nil, &RegistrationError{Combo: combo, Reason: fmt.Sprintf("%q is not a modifier", name)}
		}
	}
	if isModifier(names[len(names)-1]) {
		return nil, &RegistrationError{Combo: combo, Reason: "combination must end with a non-modifier key"}
	}
	return names, nil
}

func normalizeKeyName(part string) string {
	switch part {
	case "control":
		return "ctrl"
	case "win", "super", "windows":
		return "cmd"
	default:
		return part
	}
}

func isModifier(name string) bool {
	switch name {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}
