package signer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"voiceforge/internal/services"
)

func TestSign(t *testing.T) {
	client := New("voicesign", func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if args[1] != "/w/final.wav" || args[3] != "/w" {
			t.Fatalf("unexpected args %v", args)
		}
		return []byte("signed.wav\n"), nil
	})
	path, err := client.Sign(context.Background(), "/w/final.wav", "/w")
	if err != nil || path != filepath.Join("/w", "signed.wav") {
		t.Fatalf("unexpected result %q %v", path, err)
	}
}

func TestSignDeclined(t *testing.T) {
	client := New("voicesign", func(context.Context, string, ...string) ([]byte, error) { return []byte("\n"), nil })
	path, err := client.Sign(context.Background(), "/w/final.wav", "/w")
	if err != nil || path != "" {
		t.Fatalf("expected empty path, got %q %v", path, err)
	}
}

func TestSignFailure(t *testing.T) {
	client := New("voicesign", func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("no key") })
	if _, err := client.Sign(context.Background(), "a", "b"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
