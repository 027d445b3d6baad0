// Package lock provides mutex wrappers with optional runtime deadlock
// detection. Detection is expensive so it is only enabled when the
// GITHUB_BACKUP_DEADLOCK_DETECTION env var is set.
package lock

import (
	"os"

	"github.com/sasha-s/go-deadlock"
)

func init() {
	deadlock.Opts.Disable = os.Getenv("GITHUB_BACKUP_DEADLOCK_DETECTION") == ""
}

type Mutex = deadlock.Mutex

type RWMutex = deadlock.RWMutex
