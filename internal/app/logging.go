package app

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/relabs-tech/bend_glove/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging tees the standard logger into a rotating LOG_FILE when one is
// configured. The returned closer flushes the file on shutdown.
func SetupLogging(cfg *config.Config) io.Closer {
	if cfg.LogFile == "" {
		return nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	log.Printf("logging to %s (max %d MB, %d backups)", cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	return file
}
