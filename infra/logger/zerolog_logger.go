package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the process-wide log output.
type Options struct {
	// Level is one of debug, info, warn, error. Empty keeps info.
	Level string `json:"level"`
	// Format is "json" or "console". Empty selects console when APP_ENV=dev.
	Format string `json:"format"`
	// Output defaults to stderr so stdout stays free for command output.
	Output io.Writer `json:"-"`
	// File, when set, also receives every record as JSON, rotated by size.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stderr
	format string
	file   *lumberjack.Logger
)

// Configure applies opts to every logger created afterwards.
func Configure(opts Options) error {
	lvl := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}
	switch opts.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %s", opts.Format)
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	defer mu.Unlock()
	format = opts.Format
	if opts.Output != nil {
		output = opts.Output
	}
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("log dir: %w", err)
			}
		}
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	out, f, lj := output, format, file
	mu.RUnlock()
	if f == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		f = "console"
	}
	if f == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if lj != nil {
		out = zerolog.MultiLevelWriter(out, lj)
	}
	z := zerolog.New(out).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
