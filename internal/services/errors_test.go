package services_test

import (
	"errors"
	"strings"
	"testing"

	"voiceforge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "enhancement", "restore", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"enhancement", "restore", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestFailureCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, services.CodeOK},
		{"validation", services.Wrap(services.ErrValidation, "clone", "prepare", "invalid", nil), services.CodeInvalid},
		{"configuration", services.Wrap(services.ErrConfiguration, "tts", "lookup", "", nil), services.CodeInvalid},
		{"no audio", services.Wrap(services.ErrNoAudio, "extract", "", "", nil), services.CodeNotFound},
		{"tool", services.Wrap(services.ErrExternalTool, "merge", "concat", "", errors.New("exit 1")), services.CodeExternalTool},
		{"timeout", services.Wrap(services.ErrTimeout, "translate", "", "", nil), services.CodeTimeout},
		{"plain", errors.New("io"), services.CodeFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureCode(tc.err); got != tc.want {
				t.Fatalf("FailureCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestMarked(t *testing.T) {
	if services.Marked(errors.New("plain")) {
		t.Fatal("plain error should not be marked")
	}
	if !services.Marked(services.Wrap(services.ErrNotFound, "merge", "", "", nil)) {
		t.Fatal("wrapped error should be marked")
	}
}
