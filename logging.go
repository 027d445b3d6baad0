package main

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bug-c/github-backup/backup"
)

const (
	logDirName  = "logs"
	logFileName = "github-backup.log"

	// rotation thresholds of the run log
	logMaxSizeMB   = 10
	logMaxBackups  = 5
	logDirModePerm = fs.FileMode(0755)
)

// setupFileLogging replaces the package logger with one writing to both
// stderr and a size-rotated log file under <backup path>/logs. It returns
// the log directory so old rotated files can be cleaned up after the run.
func setupFileLogging(conf *backup.Config) (string, error) {
	logDir := filepath.Join(conf.Backup.Path, logDirName)
	if err := os.MkdirAll(logDir, logDirModePerm); err != nil {
		return "", err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}

	logger = slog.New(slog.NewTextHandler(
		io.MultiWriter(os.Stderr, fileSink),
		&slog.HandlerOptions{Level: loggerLevel},
	))

	return logDir, nil
}
