package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"voiceforge/internal/services"
)

type ffmpegCall struct {
	name string
	args []string
}

// fakeFFmpeg writes content to the path preceding -y, as ffmpeg would, and
// returns runErr.
func fakeFFmpeg(content string, runErr error, calls *[]ffmpegCall) services.CommandRunner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if calls != nil {
			*calls = append(*calls, ffmpegCall{name: name, args: args})
		}
		i := slices.Index(args, "-y")
		if i < 1 {
			return nil, errors.New("no output path")
		}
		if err := os.WriteFile(args[i-1], []byte(content), 0o644); err != nil {
			return nil, err
		}
		return []byte("ffmpeg banner\n"), runErr
	}
}

func newTestExtractor(runner services.CommandRunner) *Extractor {
	extractor := New("ffmpeg-test", false, nil)
	extractor.Runner = runner
	return extractor
}

func TestExtractReturnsUniqueFileName(t *testing.T) {
	var calls []ffmpegCall
	outDir := t.TempDir()
	extractor := newTestExtractor(fakeFFmpeg("RIFFDATA", nil, &calls))

	first, err := extractor.Extract(context.Background(), "/videos/in.mp4", outDir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := extractor.Extract(context.Background(), "/videos/in.mp4", outDir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique names, got %q twice", first)
	}
	if filepath.Ext(first) != ".wav" || strings.Contains(first, string(os.PathSeparator)) {
		t.Fatalf("expected bare .wav file name, got %q", first)
	}
	data, err := os.ReadFile(filepath.Join(outDir, first))
	if err != nil || string(data) != "RIFFDATA" {
		t.Fatalf("unexpected extracted file: %q %v", data, err)
	}

	want := []string{"-i", "/videos/in.mp4", "-q:a", "0", "-map", "a", filepath.Join(outDir, first), "-y"}
	if calls[0].name != "ffmpeg-test" || !slices.Equal(calls[0].args, want) {
		t.Fatalf("unexpected invocation %s %v", calls[0].name, calls[0].args)
	}
}

func TestExtractDefaultsBinaryName(t *testing.T) {
	var calls []ffmpegCall
	extractor := newTestExtractor(fakeFFmpeg("RIFF", nil, &calls))
	extractor.FFmpeg = "  "
	if _, err := extractor.Extract(context.Background(), "in.mp4", t.TempDir()); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if calls[0].name != "ffmpeg" {
		t.Fatalf("expected ffmpeg default, got %q", calls[0].name)
	}
}

func TestExtractEmptyOutputIsNoAudio(t *testing.T) {
	outDir := t.TempDir()
	extractor := newTestExtractor(fakeFFmpeg("", nil, nil))
	_, err := extractor.Extract(context.Background(), "silent.mp4", outDir)
	if !errors.Is(err, services.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	if services.FailureCode(err) != services.CodeNotFound {
		t.Fatalf("unexpected failure code %d", services.FailureCode(err))
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("expected empty output to be removed, found %d entries", len(entries))
	}
}

func TestExtractToolFailureIsNoAudio(t *testing.T) {
	outDir := t.TempDir()
	extractor := newTestExtractor(fakeFFmpeg("partial", errors.New("exit status 1"), nil))
	if _, err := extractor.Extract(context.Background(), "broken.mp4", outDir); !errors.Is(err, services.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("expected partial output to be removed, found %d entries", len(entries))
	}
}

func TestExtractMissingBinary(t *testing.T) {
	extractor := New(filepath.Join(t.TempDir(), "absent-ffmpeg"), false, nil)
	if _, err := extractor.Extract(context.Background(), "in.mp4", t.TempDir()); !errors.Is(err, services.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestNewSelectsRunner(t *testing.T) {
	if New("ffmpeg", false, nil).Runner == nil || New("ffmpeg", true, nil).Runner == nil {
		t.Fatal("expected a runner for both visibility modes")
	}
	extractor := &Extractor{Runner: fakeFFmpeg("RIFF", nil, nil)}
	if _, err := extractor.Extract(context.Background(), "in.mp4", t.TempDir()); err != nil {
		t.Fatalf("zero-value extractor with runner: %v", err)
	}
}
