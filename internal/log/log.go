package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tuanvumaihuynh/crm/internal/config"
)

// NewSlogLogger creates a new slog logger writing to stdout and installs it as the default logger.
func NewSlogLogger(cfg config.Log) *slog.Logger {
	log := New(cfg, os.Stdout)
	slog.SetDefault(log)

	return log
}

// New creates a logger writing to w. Records are enriched with the correlation ID
// and the trace and span IDs found in the context.
func New(cfg config.Log, w io.Writer) *slog.Logger {
	logger := slog.New(newContextHandler(newBaseHandler(cfg, w)))
	if cfg.App != "" {
		logger = logger.With(slog.String("app", cfg.App))
	}
	return logger
}

func newBaseHandler(cfg config.Log, w io.Writer) slog.Handler {
	if cfg.Format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level,
		AddSource:  cfg.AddSource,
		TimeFormat: time.RFC3339,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
}
