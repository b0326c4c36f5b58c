package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"screen-assistant/clipboard"
	"screen-assistant/config"
	"screen-assistant/display"
	"screen-assistant/hotkey"
	"screen-assistant/llm"
	"screen-assistant/logutil"
	"screen-assistant/ocr"
	"screen-assistant/pipeline"
	"screen-assistant/screenshot"
	"screen-assistant/session"
	"screen-assistant/singleinstance"
	"screen-assistant/solver"
	"screen-assistant/transcript"
	"screen-assistant/tray"
)

// enableDPIAwareness sets per-monitor DPI awareness on Windows so window
// placement and screen metrics are correct on scaled displays.
func enableDPIAwareness() {
	if runtime.GOOS != "windows" {
		return
	}
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

func main() {
	enableDPIAwareness()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logutil.Setup(cfg.EnableFileLogging)
	log.Printf("Screen Assistant starting")
	log.Printf("Solver model: %s, OCR model: %s", cfg.Solver.Model, cfg.OCR.Model)
	log.Printf("Solver key: %s", logutil.RedactKey(cfg.Solver.APIKey))
	log.Printf("Hotkeys: capture=%s reset=%s quit=%s", cfg.CaptureHotkey, cfg.ResetHotkey, cfg.QuitHotkey)

	release, err := singleinstance.Acquire(cfg.SingleInstancePort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Another instance is already running: %v\n", err)
		os.Exit(1)
	}
	defer release()

	copyAnswer := setupClipboard(cfg.CopyToClipboard)

	solverClient := solver.New(llm.New("solver", llm.Config{
		APIKey:    cfg.Solver.APIKey,
		BaseURL:   cfg.Solver.BaseURL,
		Model:     cfg.Solver.Model,
		MaxTokens: cfg.AnswerMaxTokens,
	}))
	ocrClient := ocr.New(llm.New("ocr", llm.Config{
		APIKey:      cfg.OCR.APIKey,
		BaseURL:     cfg.OCR.BaseURL,
		Model:       cfg.OCR.Model,
		MaxTokens:   2000,
		Temperature: 0.1,
	}))

	if err := solverClient.Ping(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Startup check failed: %v\nPlease verify your API key and network connectivity.\n", err)
		os.Exit(1)
	}
	log.Printf("Solver ping succeeded")

	surface, err := display.NewWindow()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create display window: %v\n", err)
		os.Exit(1)
	}
	defer surface.Close()

	controller := pipeline.New(pipeline.Config{
		Capture:                screenshot.Grab,
		Extract:                ocrClient.Extract,
		Answer:                 solverClient.Answer,
		Display:                surface,
		Session:                session.New(cfg.MaxHistoryTurns),
		Transcript:             transcript.New(cfg.TranscriptFile),
		CopyAnswer:             copyAnswer,
		Model:                  cfg.Solver.Model,
		PreserveHistoryOnReset: cfg.PreserveHistoryOnReset,
	})

	listener := hotkey.NewListener()
	bindings := []struct {
		combo    string
		callback func()
	}{
		{cfg.CaptureHotkey, controller.OnCaptureHotkey},
		{cfg.ResetHotkey, controller.OnResetHotkey},
		{cfg.QuitHotkey, controller.OnQuitHotkey},
	}
	for _, b := range bindings {
		if err := listener.Bind(b.combo, b.callback); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register hotkey: %v\n", err)
			os.Exit(1)
		}
	}
	if err := listener.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start hotkey listener: %v\n", err)
		os.Exit(1)
	}
	defer listener.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Printf("Signal received, shutting down")
		cancel()
	}()

	go func() {
		if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Pipeline stopped: %v", err)
		}
		tray.Quit()
	}()

	// Blocks on the main goroutine until quit.
	tray.Run(tray.Handlers{
		OnCapture: controller.OnCaptureHotkey,
		OnReset:   controller.OnResetHotkey,
		OnQuit:    controller.OnQuitHotkey,
	}, cancel)

	log.Printf("Screen Assistant exiting")
}

// setupClipboard initializes the clipboard when copying is enabled. A
// clipboard failure disables copying rather than aborting startup.
func setupClipboard(enabled bool) func(string) {
	if !enabled {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable, answer copying disabled: %v", err)
		return nil
	}
	return func(text string) {
		if err := clipboard.Write(text); err != nil {
			log.Printf("Clipboard write failed: %v", err)
		}
	}
}
