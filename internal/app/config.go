package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/host"
)

// DefaultScript is loaded from the base directory when no files are given.
const DefaultScript = "build.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Files   []string          // hcl files or directories
	BaseDir string            // project base directory
	Defines map[string]string // initial properties, also visible as param.<name>

	LogFormat    string
	LogLevel     string
	MessageLevel string // least severe echo level printed
	Strict       bool   // unknown task attributes fail instead of warning

	Fs        afero.Fs  // defaults to the OS filesystem
	LogOutput io.Writer // defaults to the app output
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	if len(cfg.Files) == 0 {
		cfg.Files = []string{filepath.Join(cfg.BaseDir, DefaultScript)}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.MessageLevel == "" {
		cfg.MessageLevel = string(host.LevelInfo)
	}
	if _, err := host.ParseLogLevel(cfg.MessageLevel); err != nil {
		return nil, fmt.Errorf("invalid message-level: %w", err)
	}

	for name := range cfg.Defines {
		if name == "" {
			return nil, errors.New("property names must not be empty")
		}
	}
	return &cfg, nil
}
