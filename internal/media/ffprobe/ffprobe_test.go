package ffprobe

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if !result.IsVideo() {
		t.Fatal("expected container to be treated as video")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestCoverArtIsNotVideo(t *testing.T) {
	result := Result{Streams: []Stream{
		{CodecType: "audio", CodecName: "mp3"},
		{CodecType: "video", CodecName: "mjpeg", Disposition: map[string]int{"attached_pic": 1}},
	}}
	if result.IsVideo() {
		t.Fatal("attached picture must not make the file a video")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if (Result{}).DurationSeconds() != 0 {
		t.Fatal("expected zero duration for empty value")
	}
}

func TestInspectDecodesRunnerOutput(t *testing.T) {
	var gotArgs []string
	prober := &Prober{Binary: "ffprobe-test", Runner: func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "ffprobe-test" {
			t.Fatalf("unexpected binary %q", name)
		}
		gotArgs = args
		return []byte(`{"streams":[{"index":0,"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"16000","channels":1}],"format":{"duration":"2.500000"}}`), nil
	}}
	result, err := prober.Inspect(context.Background(), "/tmp/a.wav")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.AudioStreamCount() != 1 || result.IsVideo() {
		t.Fatalf("unexpected streams: %+v", result.Streams)
	}
	if result.DurationSeconds() != 2.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/a.wav" || gotArgs[len(gotArgs)-2] != "--" {
		t.Fatalf("expected path after --, got %v", gotArgs)
	}
}

func TestInspectErrors(t *testing.T) {
	prober := &Prober{Runner: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}}
	if _, err := prober.Inspect(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := prober.Inspect(context.Background(), "/tmp/a.wav"); err == nil || !strings.Contains(err.Error(), "ffprobe inspect") {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
	prober.Runner = func(context.Context, string, ...string) ([]byte, error) { return []byte("not json"), nil }
	if _, err := prober.Inspect(context.Background(), "/tmp/a.wav"); err == nil || !strings.Contains(err.Error(), "ffprobe parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
