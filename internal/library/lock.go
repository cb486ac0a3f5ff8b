package library

import (
	"fmt"

	"github.com/gofrs/flock"
)

// withLock runs fn while holding the catalog lock, failing fast when
// another process holds it.
func (r *Runner) withLock(fn func() error) error {
	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", r.cfg.LockPath(), err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}
