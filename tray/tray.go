// Package tray provides the system tray menu mirroring the global hotkeys.
package tray

import (
	"log"

	"github.com/getlantern/systray"
)

// Handlers receive tray menu clicks. Each maps to the same action as the
// corresponding hotkey.
type Handlers struct {
	OnCapture func()
	OnReset   func()
	OnQuit    func()
}

// Run starts the tray icon and blocks until Quit is called. Must run on the
// main goroutine on platforms that require it.
func Run(h Handlers, onExit func()) {
	systray.Run(func() { onReady(h) }, onExit)
}

// Quit removes the tray icon and unblocks Run.
func Quit() {
	systray.Quit()
}

func onReady(h Handlers) {
	if icon := getIcon(); icon != nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle("Screen Assistant")
	systray.SetTooltip("Screen Assistant")

	mCapture := systray.AddMenuItem("Capture Screen", "Capture the screen and answer")
	mReset := systray.AddMenuItem("Reset", "Clear the display and session")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if h.OnCapture != nil {
					h.OnCapture()
				}
			case <-mReset.ClickedCh:
				if h.OnReset != nil {
					h.OnReset()
				}
			case <-mQuit.ClickedCh:
				log.Printf("Tray: quit clicked")
				if h.OnQuit != nil {
					h.OnQuit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func getIcon() []byte {
	// TODO: embed an .ico once one is drawn; systray tolerates a nil icon
	return nil
}
