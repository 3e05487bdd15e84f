package log

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Config declares how the process logger is assembled.
type Config struct {
	// Level is one of debug|info|warn|error.
	Level string `json:"level" yaml:"level"`
	// Format is text|json|tint. tint writes colored lines to stderr when it is a terminal.
	Format string `json:"format" yaml:"format"`
	// Outputs lists sinks; empty means console. Ignored for tint.
	Outputs []OutputConfig `json:"outputs" yaml:"outputs"`
	// RedactKeys replaces the values of these field keys with [REDACTED].
	RedactKeys []string `json:"redactKeys" yaml:"redactKeys"`
	// SampleInitial/SampleThereafter keep the first N identical lines, then every Mth.
	SampleInitial    int `json:"sampleInitial" yaml:"sampleInitial"`
	SampleThereafter int `json:"sampleThereafter" yaml:"sampleThereafter"`
}

// OutputConfig describes one output: console, file (with Path) or null.
type OutputConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Format) {
	case "tint":
		return newTintLogger(level), nil
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	opts := []LoggerOption{WithLevel(level)}
	if strings.EqualFold(cfg.Format, "json") {
		opts = append(opts, WithFormatter(&JSONFormatter{}))
	} else {
		opts = append(opts, WithFormatter(&TextFormatter{}))
	}
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "", "console":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "file":
			if oc.Path == "" {
				return nil, fmt.Errorf("log: file output requires a path")
			}
			fo, err := NewFileOutput(oc.Path)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithOutput(fo))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		default:
			return nil, fmt.Errorf("log: unknown output %q", oc.Type)
		}
	}

	logger := NewLogger(opts...).(*BaseLogger)
	if len(cfg.RedactKeys) > 0 || cfg.SampleThereafter > 0 {
		h := newBridgeHandler(logger).
			withRedactions(cfg.RedactKeys).
			withSampler(cfg.SampleInitial, cfg.SampleThereafter)
		logger.slogLogger = slog.New(h)
	}
	return logger, nil
}

func newTintLogger(level Level) Logger {
	h := tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      toSlogLevel(level),
		TimeFormat: time.TimeOnly + ".000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	return NewLogger(WithLevel(level), WithHandler(h))
}
