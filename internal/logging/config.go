package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "MTHREAD_LOG_LEVEL"
	EnvLogFormat    = "MTHREAD_LOG_FORMAT"
	EnvLogTimestamp = "MTHREAD_LOG_TIMESTAMP"
	EnvLogNoColor   = "MTHREAD_LOG_NOCOLOR"
)

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

type Config struct {
	Level     zerolog.Level
	Format    Format
	Timestamp bool
	NoColor   bool
	Out       io.Writer
}

// DefaultConfig writes human-readable output to stderr, coloured only when
// stderr is a terminal.
func DefaultConfig() Config {
	return Config{
		Level:     zerolog.InfoLevel,
		Format:    FormatConsole,
		Timestamp: true,
		NoColor:   !isTerminal(os.Stderr),
		Out:       os.Stderr,
	}
}

// FromEnv returns DefaultConfig with the MTHREAD_LOG_* overrides applied.
func FromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	return cfg
}

func ApplyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if f, ok := ParseFormat(os.Getenv(EnvLogFormat)); ok {
		cfg.Format = f
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// New builds a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	if cfg.Format != FormatJSON {
		if f, ok := out.(*os.File); ok && !cfg.NoColor {
			out = colorable.NewColorable(f)
		}
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatConsole:
		return FormatConsole, true
	case FormatJSON:
		return FormatJSON, true
	default:
		return FormatConsole, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
