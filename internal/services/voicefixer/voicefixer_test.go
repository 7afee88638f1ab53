package voicefixer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"voiceforge/internal/device"
	"voiceforge/internal/services"
)

// writingRunner emulates the CLI by writing to the --output argument.
func writingRunner(t *testing.T, gotArgs *[]string, content string) services.CommandRunner {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		*gotArgs = args
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "--output" {
				if err := os.WriteFile(args[i+1], []byte(content), 0o644); err != nil {
					t.Fatalf("write output: %v", err)
				}
			}
		}
		return nil, nil
	}
}

func TestRestoreArgs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	var args []string
	client := New("voicefixer", "/m/vf.ckpt", "/m/voc.pt", nil, WithRunner(writingRunner(t, &args, "RIFF")))
	if err := client.Restore(context.Background(), "/in.wav", out, true); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"--input", "/in.wav", "--output", out, "--fixer-model", "/m/vf.ckpt", "--vocoder-model", "/m/voc.pt", "--cuda"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestEnhanceWritesUniqueFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "merged.wav")
	if err := os.WriteFile(input, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	var args []string
	client := New("voicefixer", "a", "b", nil, WithRunner(writingRunner(t, &args, "ENHANCED")))

	first, err := client.Enhance(context.Background(), input, dir, device.CPU)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	second, err := client.Enhance(context.Background(), input, dir, device.CPU)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if first == second || filepath.Dir(first) != dir || !strings.HasSuffix(first, ".wav") {
		t.Fatalf("unexpected outputs %q %q", first, second)
	}
	for _, arg := range args {
		if arg == "--cuda" {
			t.Fatal("cpu device must not pass --cuda")
		}
	}
}

func TestEnhanceErrors(t *testing.T) {
	dir := t.TempDir()
	client := New("voicefixer", "a", "b", nil, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, nil
	}))
	if _, err := client.Enhance(context.Background(), filepath.Join(dir, "absent.wav"), dir, device.CPU); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	input := filepath.Join(dir, "merged.wav")
	_ = os.WriteFile(input, []byte("RIFF"), 0o644)
	if _, err := client.Enhance(context.Background(), input, dir, device.CPU); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected missing output error, got %v", err)
	}
}
