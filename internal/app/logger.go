package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/golinks/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "golinks"

// NewLogger builds the process logger. Output goes to stdout and, when
// cfg.File is set, to a size-rotated file. The returned function closes the file.
func NewLogger(env string, cfg config.Log) (*httplog.Logger, func() error, error) {
	const op = "app.NewLogger"

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("%s: invalid log level %q: %w", op, cfg.Level, err)
	}

	var w io.Writer = os.Stdout
	closeFn := func() error { return nil }

	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, lj)
		closeFn = lj.Close
	}

	logger := httplog.NewLogger(serviceName, httplog.Options{
		JSON:     env == config.EnvProd,
		LogLevel: level,
		Concise:  env != config.EnvProd,
		Tags:     map[string]string{"env": env},
		Writer:   w,
	})

	return logger, closeFn, nil
}
