package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"voiceforge/internal/logging"
)

const gpuLockRetry = 500 * time.Millisecond

// withGPULock runs fn while holding the host-wide GPU lock, so concurrent
// voiceforge processes take turns on the device. CPU jobs skip the lock.
func withGPULock(ctx context.Context, lockPath string, useGPU bool, logger *slog.Logger, fn func() error) error {
	if !useGPU {
		return fn()
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire gpu lock: %w", err)
	}
	if !locked {
		logger.Info("waiting for gpu lock",
			logging.String(logging.FieldEventType, "gpu_lock_wait"),
			logging.String("lock", lockPath),
		)
		locked, err = lock.TryLockContext(ctx, gpuLockRetry)
		if err != nil {
			return fmt.Errorf("acquire gpu lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("acquire gpu lock: %s is held", lockPath)
		}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release gpu lock", "gpu_lock_release_failed",
				logging.String("lock", lockPath),
				logging.Error(err),
			)
		}
	}()
	return fn()
}
