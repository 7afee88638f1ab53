package fragments

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

const (
	// ManifestName is the concat manifest written next to the fragments.
	ManifestName = "merged_files.txt"
	// TrimmedPrefix is prepended to a fragment's name for its trimmed copy.
	TrimmedPrefix = "trimmed_"
	// AudioExt is the extension fragments must carry to be selected.
	AudioExt = ".wav"
)

// Trimmer removes leading and trailing silence from input into output.
type Trimmer interface {
	Trim(ctx context.Context, input, output string) (string, error)
}

// Concatenator joins the files listed in manifest into output.
type Concatenator interface {
	Concat(ctx context.Context, manifest, output string) error
}

// Merger joins cloned fragments into one audio file.
type Merger struct {
	trimmer Trimmer
	concat  Concatenator
	logger  *slog.Logger
}

// NewMerger constructs a Merger.
func NewMerger(trimmer Trimmer, concat Concatenator, logger *slog.Logger) *Merger {
	return &Merger{
		trimmer: trimmer,
		concat:  concat,
		logger:  logging.NewComponentLogger(logger, "merger"),
	}
}

// Select lists the fragments in dir whose names start with prefix and end
// in AudioExt, sorted lexicographically.
func Select(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, AudioExt) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Merge trims and concatenates every fragment in dir matching prefix into
// dir/outputName and returns that path. An empty path with a nil error
// means there was nothing to merge; the directory is left untouched.
//
// The concatenation tool's exit status is not consulted. Callers that need
// a usable file must check the returned path themselves.
func (m *Merger) Merge(ctx context.Context, dir, prefix, outputName string) (string, error) {
	if m == nil || m.trimmer == nil || m.concat == nil {
		return "", services.Wrap(services.ErrConfiguration, "merge", "init", "merger missing trimmer or concatenator", nil)
	}
	names, err := Select(dir, prefix)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "merge", "select", dir, err)
	}
	if len(names) == 0 {
		m.logger.Info("no fragments to merge",
			logging.String("dir", dir),
			logging.String("prefix", prefix),
			logging.String(logging.FieldEventType, "merge_empty"),
		)
		return "", nil
	}

	started := time.Now()
	fragments := make([]string, 0, len(names))
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		source := filepath.Join(dir, name)
		fragments = append(fragments, source)
		path, err := m.trimmer.Trim(ctx, source, filepath.Join(dir, TrimmedPrefix+name))
		if err != nil {
			removeAll(trimmed)
			return "", services.Wrap(services.ErrExternalTool, "merge", "trim", name, err)
		}
		trimmed = append(trimmed, path)
	}

	manifest := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(manifest, []byte(BuildManifest(trimmed)), 0o644); err != nil {
		removeAll(trimmed)
		return "", services.Wrap(services.ErrTransient, "merge", "manifest", "write concat manifest", err)
	}

	output := filepath.Join(dir, outputName)
	// Best effort: a failed concat surfaces as a missing or short output.
	_ = m.concat.Concat(ctx, manifest, output)

	removeAll([]string{manifest})
	removeAll(fragments)
	removeAll(trimmed)

	m.logger.Info("fragments merged",
		logging.Int("fragments", len(names)),
		logging.String("output", output),
		logging.Duration("elapsed", time.Since(started)),
	)
	return output, nil
}

// BuildManifest renders a concat demuxer manifest listing paths in order.
// Each path is single-quoted; embedded single quotes close the quoted
// string, emit an escaped quote and reopen it.
func BuildManifest(paths []string) string {
	var b strings.Builder
	for _, path := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(path, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func removeAll(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
