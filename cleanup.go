package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// cleanupOldLogs deletes rotated log files older than the retention
// period. lumberjack caps the number of rotated files kept but not their
// age, so long gaps between runs would otherwise keep stale logs around
// forever. This is best effort clean up, failures are logged and the run
// result is unaffected.
func cleanupOldLogs(logDir string, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		logger.Error("unable to read log dir for clean up", "err", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// lumberjack names rotated files <name>-<timestamp>.log
		if !strings.Contains(entry.Name(), ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.Error("unable to stat log file", "name", entry.Name(), "err", err)
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		fullPath := filepath.Join(logDir, entry.Name())
		logger.Info("removing old log file...", "path", fullPath)
		if err := os.Remove(fullPath); err != nil {
			logger.Error("unable to remove old log file", "path", fullPath, "err", err)
			continue
		}
	}
}
