package cmd

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/patrickward/todomark/internal/config"
)

// SetupLogging points the standard logger at stderr (when verbose) and a rotating log file
// (when configured). With neither, log output is discarded so stdout stays a clean block.
// The returned closer releases the log file and is nil when there is none.
func SetupLogging(cfg config.LogConfig, verbose bool) (io.Closer, error) {
	var writers []io.Writer
	if verbose {
		writers = append(writers, os.Stderr)
	}

	var logger *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, err
		}

		logger = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writers = append(writers, logger)
	}

	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return nil, nil
	}

	log.SetOutput(io.MultiWriter(writers...))

	if logger == nil {
		return nil, nil
	}
	return logger, nil
}
