package fileops

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"

	"isadb/internal/dbcore"
)

// WriterLock is the advisory single-writer lock on <data_path>/.isadb.lock,
// backing §5's "single writer at a time" assumption.
type WriterLock struct {
	fl *flock.Flock
}

// AcquireWriterLock takes the exclusive lock at <dataPath>/.isadb.lock,
// retrying on transient contention with a bounded exponential backoff. A
// failure to acquire at all (lock genuinely held elsewhere) is reported as
// an IOError, not retried forever.
func AcquireWriterLock(dataPath string) (*WriterLock, error) {
	if err := EnsureDir(dataPath); err != nil {
		return nil, err
	}
	fl := flock.New(Join(dataPath, ".isadb.lock"))

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 2 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	operation := func() error {
		locked, err := fl.TryLock()
		if err != nil {
			return backoff.Permanent(dbcore.Wrap(dbcore.KindIO, err, "lock %s", fl.Path()))
		}
		if !locked {
			return dbcore.Newf(dbcore.KindIO, "lock %s held by another process", fl.Path())
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return &WriterLock{fl: fl}, nil
}

// Release unlocks the file.
func (w *WriterLock) Release() error {
	if w == nil || w.fl == nil {
		return nil
	}
	if err := w.fl.Unlock(); err != nil {
		return dbcore.Wrap(dbcore.KindIO, err, "unlock %s", w.fl.Path())
	}
	return nil
}
