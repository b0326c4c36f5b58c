//go:build windows

package display

import (
	"log"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procCreateWindowEx           = user32.NewProc("CreateWindowExW")
	procDefWindowProc            = user32.NewProc("DefWindowProcW")
	procDestroyWindow            = user32.NewProc("DestroyWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procGetSystemMetrics         = user32.NewProc("GetSystemMetrics")
	procRegisterClassEx          = user32.NewProc("RegisterClassExW")
	procUpdateWindow             = user32.NewProc("UpdateWindow")
	procGetMessage               = user32.NewProc("GetMessageW")
	procDispatchMessage          = user32.NewProc("DispatchMessageW")
	procTranslateMessage         = user32.NewProc("TranslateMessage")
	procBeginPaint               = user32.NewProc("BeginPaint")
	procEndPaint                 = user32.NewProc("EndPaint")
	procDrawText                 = user32.NewProc("DrawTextW")
	procLoadCursor               = user32.NewProc("LoadCursorW")
	procInvalidateRect           = user32.NewProc("InvalidateRect")
	procPostMessage              = user32.NewProc("PostMessageW")
	procPostQuitMessage          = user32.NewProc("PostQuitMessage")
	procSetWindowDisplayAffinity = user32.NewProc("SetWindowDisplayAffinity")
)

const (
	wsPopup         = 0x80000000
	wsBorder        = 0x00800000
	wsExNoActivate  = 0x08000000
	wsExToolWindow  = 0x00000080
	wsExTopmost     = 0x00000008
	wmDestroy       = 0x0002
	wmPaint         = 0x000F
	wmClose         = 0x0010
	wmUser          = 0x0400
	wmUpdateText    = wmUser + 1
	wmHideWindow    = wmUser + 2
	wmShutdown      = wmUser + 3
	swShow          = 5
	swHide          = 0
	swpNoActivate   = 0x0010
	swpNoMove       = 0x0002
	swpNoSize       = 0x0001
	hwndTopmost     = ^uintptr(0)
	smCxScreen      = 0
	dtWordBreak     = 0x00000010
	dtEditControl   = 0x00002000
	colorWindow     = 5
	idcArrow        = 32512
	windowWidth     = 620
	windowHeight    = 360
	windowMarginTop = 16
	textPadding     = 12

	// WDA_EXCLUDEFROMCAPTURE keeps the window out of screenshots and screen
	// shares on Windows 10 2004+. WDA_MONITOR is the older blackout variant.
	wdaExcludeFromCapture = 0x00000011
	wdaMonitor            = 0x00000001
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type point struct {
	X, Y int32
}

type paintStruct struct {
	Hdc         windows.Handle
	FErase      int32
	RcPaint     rect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

type rect struct {
	Left, Top, Right, Bottom int32
}

// window is a persistent top-center popup. All Win32 calls happen on one
// locked OS thread; external callers communicate via posted messages.
type window struct {
	mu   sync.Mutex
	hwnd windows.Handle
	text string
	done chan struct{}
}

// NewWindow creates the display window on its own OS thread. The window
// starts hidden and appears on the first SetText.
func NewWindow() (Surface, error) {
	w := &window{done: make(chan struct{})}
	ready := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(w.done)

		if err := w.create(); err != nil {
			ready <- err
			return
		}
		ready <- nil
		w.messageLoop()
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *window) SetText(text string) {
	w.mu.Lock()
	w.text = text
	hwnd := w.hwnd
	w.mu.Unlock()
	if hwnd != 0 {
		procPostMessage.Call(uintptr(hwnd), wmUpdateText, 0, 0)
	}
}

func (w *window) Clear() {
	w.mu.Lock()
	w.text = ""
	hwnd := w.hwnd
	w.mu.Unlock()
	if hwnd != 0 {
		procPostMessage.Call(uintptr(hwnd), wmHideWindow, 0, 0)
	}
}

func (w *window) Close() {
	w.mu.Lock()
	hwnd := w.hwnd
	w.mu.Unlock()
	if hwnd != 0 {
		procPostMessage.Call(uintptr(hwnd), wmShutdown, 0, 0)
		<-w.done
	}
}

func (w *window) create() error {
	className, _ := windows.UTF16PtrFromString("AssistantDisplayClass")
	windowName, _ := windows.UTF16PtrFromString("Assistant")

	cursor, _, _ := procLoadCursor.Call(0, idcArrow)
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   windows.NewCallback(w.wndProc),
		HCursor:       windows.Handle(cursor),
		HbrBackground: windows.Handle(colorWindow + 1),
		LpszClassName: className,
	}
	if atom, _, _ := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return windows.GetLastError()
	}

	screenWidth, _, _ := procGetSystemMetrics.Call(smCxScreen)
	x := (int32(screenWidth) - windowWidth) / 2

	hwnd, _, _ := procCreateWindowEx.Call(
		wsExNoActivate|wsExToolWindow|wsExTopmost,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowName)),
		wsPopup|wsBorder,
		uintptr(x),
		windowMarginTop,
		windowWidth,
		windowHeight,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		return windows.GetLastError()
	}

	// Exclude the window from screenshots and screen sharing. Fall back to
	// the legacy blackout affinity on older builds.
	if ret, _, _ := procSetWindowDisplayAffinity.Call(hwnd, wdaExcludeFromCapture); ret == 0 {
		if ret, _, _ := procSetWindowDisplayAffinity.Call(hwnd, wdaMonitor); ret == 0 {
			log.Printf("Display: SetWindowDisplayAffinity unavailable, window will be visible in captures")
		}
	}

	procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoActivate|swpNoMove|swpNoSize)

	w.mu.Lock()
	w.hwnd = windows.Handle(hwnd)
	w.mu.Unlock()
	return nil
}

func (w *window) messageLoop() {
	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *window) wndProc(hwnd windows.Handle, message uint32, wParam, lParam uintptr) uintptr {
	switch message {
	case wmPaint:
		var ps paintStruct
		hdc, _, _ := procBeginPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		w.mu.Lock()
		text := w.text
		w.mu.Unlock()
		r := rect{
			Left:   textPadding,
			Top:    textPadding,
			Right:  windowWidth - textPadding,
			Bottom: windowHeight - textPadding,
		}
		textPtr, _ := windows.UTF16PtrFromString(text)
		procDrawText.Call(
			hdc,
			uintptr(unsafe.Pointer(textPtr)),
			uintptr(^uint32(0)),
			uintptr(unsafe.Pointer(&r)),
			dtWordBreak|dtEditControl,
		)
		procEndPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		return 0

	case wmUpdateText:
		procShowWindow.Call(uintptr(hwnd), swShow)
		procUpdateWindow.Call(uintptr(hwnd))
		procSetWindowPos.Call(uintptr(hwnd), hwndTopmost, 0, 0, 0, 0, swpNoActivate|swpNoMove|swpNoSize)
		procInvalidateRect.Call(uintptr(hwnd), 0, 1)
		return 0

	case wmHideWindow:
		procShowWindow.Call(uintptr(hwnd), swHide)
		return 0

	case wmShutdown, wmClose:
		procDestroyWindow.Call(uintptr(hwnd))
		return 0

	case wmDestroy:
		w.mu.Lock()
		w.hwnd = 0
		w.mu.Unlock()
		procPostQuitMessage.Call(0)
		return 0
	}

	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(message), wParam, lParam)
	return ret
}
