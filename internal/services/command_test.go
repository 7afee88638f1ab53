package services_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceforge/internal/services"
)

func TestLastLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/out.wav\n", "/tmp/out.wav"},
		{"loading model\nprogress 100%\n/tmp/out.wav\n\n", "/tmp/out.wav"},
		{"  \n  \n", ""},
	}
	for _, tc := range tests {
		if got := services.LastLine([]byte(tc.in)); got != tc.want {
			t.Fatalf("LastLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRunCommandCapturesStdoutAndStderr(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok")
	if err := os.WriteFile(ok, []byte("#!/bin/sh\necho result-path\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	fail := filepath.Join(dir, "fail")
	if err := os.WriteFile(fail, []byte("#!/bin/sh\necho model missing >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	out, err := services.RunCommand(context.Background(), ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services.LastLine(out) != "result-path" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = services.RunCommand(context.Background(), fail)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "model missing") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestRunCommandWithInputFeedsStdin(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "upper")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\ntr a-z A-Z\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	out, err := services.RunCommandWithInput(context.Background(), []byte("hello"), stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "HELLO" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestResolveOutputPath(t *testing.T) {
	if got := services.ResolveOutputPath("  ", "/work"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := services.ResolveOutputPath("/abs/out.wav", "/work"); got != "/abs/out.wav" {
		t.Fatalf("unexpected absolute handling %q", got)
	}
	if got := services.ResolveOutputPath("out.wav", "/work"); got != filepath.Join("/work", "out.wav") {
		t.Fatalf("unexpected relative handling %q", got)
	}
}

func TestStreamingRunnerPassesOutputThrough(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "noisy")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho banner\necho progress >&2\nexit $1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	var stdout, stderr bytes.Buffer
	run := services.StreamingRunner(&stdout, &stderr)

	out, err := run(context.Background(), stub, "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no captured output, got %q", out)
	}
	if stdout.String() != "banner\n" || stderr.String() != "progress\n" {
		t.Fatalf("unexpected streams %q / %q", stdout.String(), stderr.String())
	}

	if _, err := run(context.Background(), stub, "2"); err == nil || !strings.Contains(err.Error(), "noisy") {
		t.Fatalf("expected named failure, got %v", err)
	}
}
