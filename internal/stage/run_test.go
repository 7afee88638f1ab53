package stage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"voiceforge/internal/services"
)

func TestRunnerRecordsTimingsAndStageContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	runner := NewRunner(logger)

	var seen string
	err := runner.Run(context.Background(), "separation", func(ctx context.Context) error {
		seen, _ = services.StageFromContext(ctx)
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if seen != "separation" {
		t.Fatalf("expected stage in context, got %q", seen)
	}
	_ = runner.Run(context.Background(), "cloning", func(context.Context) error { return nil })

	timings := runner.Timings()
	if len(timings) != 2 || timings[0].Name != "separation" || timings[1].Name != "cloning" {
		t.Fatalf("unexpected timings %+v", timings)
	}
	if runner.Elapsed("separation") < 5*time.Millisecond {
		t.Fatalf("expected separation elapsed >= 5ms, got %s", runner.Elapsed("separation"))
	}
	if runner.Elapsed() < runner.Elapsed("separation") {
		t.Fatal("total must include every stage")
	}
	if !strings.Contains(runner.Summary(), "separation=") {
		t.Fatalf("unexpected summary %q", runner.Summary())
	}
	out := buf.String()
	if !strings.Contains(out, `"event_type":"stage_start"`) || !strings.Contains(out, `"stage":"separation"`) {
		t.Fatalf("expected stage logs, got %s", out)
	}
}

func TestRunnerPreservesMarkedErrors(t *testing.T) {
	runner := NewRunner(nil)
	cause := services.Wrap(services.ErrExternalTool, "cloning", "synthesize", "boom", nil)
	err := runner.Run(context.Background(), "cloning", func(context.Context) error { return cause })
	if !errors.Is(err, cause) || services.FailureCode(err) != services.CodeExternalTool {
		t.Fatalf("expected marked error to pass through, got %v", err)
	}
	if runner.Timings()[0].Err == nil {
		t.Fatal("expected failure recorded in timing")
	}
}

func TestRunnerWrapsUnmarkedErrors(t *testing.T) {
	runner := NewRunner(nil)
	cause := errors.New("disk full")
	err := runner.Run(context.Background(), "merge", func(context.Context) error { return cause })
	if !errors.Is(err, cause) || !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected wrapped transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "merge") {
		t.Fatalf("expected stage name in message, got %q", err.Error())
	}
	if services.FailureCode(err) != services.CodeFailed {
		t.Fatalf("unexpected failure code %d", services.FailureCode(err))
	}
}

func TestHealthConstructors(t *testing.T) {
	if h := Healthy("cloning"); !h.Ready || h.Name != "cloning" {
		t.Fatalf("unexpected %+v", h)
	}
	if h := Unhealthy("tts", "piper missing"); h.Ready || h.Detail != "piper missing" {
		t.Fatalf("unexpected %+v", h)
	}
}

func TestBlockingSkipsDisabledStages(t *testing.T) {
	health := []Health{
		Healthy("cloning"),
		Disabled("signing", "disabled"),
		Unhealthy("speed", `binary "speedmatch" not found`),
	}
	blocking := Blocking(health)
	if len(blocking) != 1 || blocking[0].Name != "speed" {
		t.Fatalf("unexpected blocking stages %+v", blocking)
	}
	if !health[1].Ready || !health[1].Disabled {
		t.Fatalf("disabled stage should be ready, got %+v", health[1])
	}
}
