package workdir

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voiceforge/internal/logging"
)

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Skipped []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// DirInfo contains metadata about a job directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanStale removes job directories older than maxAge. Directories whose
// name appears in keep are left in place and reported as skipped.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, keep map[string]struct{}, logger *slog.Logger) CleanResult {
	cutoff := time.Now().Add(-maxAge)
	return sweep(ctx, root, logger, "stale", func(entry os.DirEntry, info fs.FileInfo) (remove bool, skipped bool) {
		if !info.ModTime().Before(cutoff) {
			return false, false
		}
		if _, ok := keep[entry.Name()]; ok {
			return false, true
		}
		return true, false
	})
}

// CleanOrphaned removes job directories that have no matching job ID in
// known. Directories modified within grace are left alone: a job that could
// not reach the history store still owns its directory while it runs.
func CleanOrphaned(ctx context.Context, root string, known map[string]struct{}, grace time.Duration, logger *slog.Logger) CleanResult {
	cutoff := time.Now().Add(-grace)
	return sweep(ctx, root, logger, "orphaned", func(entry os.DirEntry, info fs.FileInfo) (bool, bool) {
		if _, ok := known[entry.Name()]; ok {
			return false, false
		}
		return info.ModTime().Before(cutoff), false
	})
}

func sweep(ctx context.Context, root string, logger *slog.Logger, reason string, decide func(os.DirEntry, fs.FileInfo) (bool, bool)) CleanResult {
	result := CleanResult{}
	logger = logging.NewComponentLogger(logger, "workdir")

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx != nil && ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: ctx.Err()})
			return result
		}
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}

		remove, skipped := decide(entry, info)
		if skipped {
			result.Skipped = append(result.Skipped, dirPath)
			continue
		}
		if !remove {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove job directory", "workdir_cleanup_failed",
				logging.String("path", dirPath),
				logging.String("reason", reason),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed job directory",
			logging.String("path", dirPath),
			logging.String("reason", reason),
			logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			logging.String(logging.FieldEventType, "workdir_cleanup"),
		)
	}

	return result
}

// ListDirectories returns the job directories under root, newest first.
func ListDirectories(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    dirSize(dirPath),
		})
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return dirs[i].ModTime.After(dirs[j].ModTime)
	})
	return dirs, nil
}

// dirSize is best effort; unreadable entries are skipped.
func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
