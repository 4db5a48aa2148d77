package lock

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock is a handle to a held lock. It must be passed back to ReleaseLock.
type FileLock struct {
	// Target is the path the lock guards.
	Target string
	// LockPath is the lock file backing it.
	LockPath string
	flock    *flock.Flock
}

// LockManagerInterface is what the service layer depends on, so tests can swap in a fake.
type LockManagerInterface interface {
	AcquireLock(ctx context.Context, target string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}
