package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPathVar names an alternative .env location when no .env file sits next
// to the executable.
const EnvPathVar = "ASSISTANT_ENV"

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultSolveModel = "gpt-4"
	defaultOCRModel   = "gpt-4o-mini"

	DefaultCaptureHotkey = "Alt+Enter"
	DefaultQuitHotkey    = "Ctrl+Alt+Q"
	DefaultResetHotkey   = "Ctrl+Alt+R"
)

// ModelConfig is the flat option set for one remote model endpoint.
type ModelConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Config is resolved once at startup and passed by reference to every
// component that needs it. No package reads the environment after Load.
type Config struct {
	Solver ModelConfig
	OCR    ModelConfig

	CaptureHotkey string
	QuitHotkey    string
	ResetHotkey   string

	PreserveHistoryOnReset bool
	MaxHistoryTurns        int
	AnswerMaxTokens        int

	EnableFileLogging  bool
	TranscriptFile     string
	CopyToClipboard    bool
	SingleInstancePort int
}

// ValidationError reports required settings that are missing or malformed.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Load reads the .env file (executable directory first, then the path named
// by ASSISTANT_ENV), applies process environment on top, and resolves every
// option with its default.
func Load() (*Config, error) {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	solverKey := os.Getenv("SOLVING_MODEL_API_KEY")
	solverBase := getEnvWithDefault("SOLVING_MODEL_BASE_URL", defaultBaseURL)

	cfg := &Config{
		Solver: ModelConfig{
			APIKey:  solverKey,
			BaseURL: solverBase,
			Model:   getEnvWithDefault("SOLVING_MODEL", defaultSolveModel),
		},
		OCR: ModelConfig{
			// The OCR endpoint inherits the solving credentials unless
			// overridden, so a single-provider .env stays three lines.
			APIKey:  getEnvWithDefault("OCR_API_KEY", solverKey),
			BaseURL: getEnvWithDefault("OCR_BASE_URL", solverBase),
			Model:   getEnvWithDefault("OCR_MODEL", defaultOCRModel),
		},
		CaptureHotkey:          getEnvWithDefault("CAPTURE_HOTKEY", DefaultCaptureHotkey),
		QuitHotkey:             getEnvWithDefault("QUIT_HOTKEY", DefaultQuitHotkey),
		ResetHotkey:            getEnvWithDefault("RESET_HOTKEY", DefaultResetHotkey),
		PreserveHistoryOnReset: boolEnv("PRESERVE_HISTORY_ON_RESET"),
		MaxHistoryTurns:        intEnv("MAX_HISTORY_TURNS", 8),
		AnswerMaxTokens:        intEnv("ANSWER_MAX_TOKENS", 1000),
		EnableFileLogging:      boolEnv("ENABLE_FILE_LOGGING"),
		TranscriptFile:         os.Getenv("TRANSCRIPT_FILE"),
		CopyToClipboard:        boolEnv("COPY_TO_CLIPBOARD"),
		SingleInstancePort:     intEnv("SINGLEINSTANCE_PORT", 49560),
	}

	return cfg, nil
}

// Validate returns a ValidationError when a required setting is absent.
// Callers treat this as fatal: the process refuses to start.
func (c *Config) Validate() error {
	var missing []string
	if c.Solver.APIKey == "" {
		missing = append(missing, "SOLVING_MODEL_API_KEY")
	}
	if c.Solver.Model == "" {
		missing = append(missing, "SOLVING_MODEL")
	}
	if c.OCR.Model == "" {
		missing = append(missing, "OCR_MODEL")
	}
	if c.CaptureHotkey == "" {
		missing = append(missing, "CAPTURE_HOTKEY")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}

func intEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
