package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dhavalsavalia/avwatch/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds a logger writing to out in the configured format and level.
// Console output is coloured only when out is a terminal.
func New(cfg config.LogConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	w := out
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !isTerminal(out),
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Open returns a logger for use while the TUI owns the terminal. Output
// goes to cfg.File when set and is discarded otherwise.
func Open(cfg config.LogConfig) (zerolog.Logger, func() error, error) {
	if cfg.File == "" {
		return zerolog.Nop(), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	logger, err := New(cfg, f)
	if err != nil {
		f.Close()
		return zerolog.Nop(), nil, err
	}
	return logger, f.Close, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
