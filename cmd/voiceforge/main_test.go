package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"voiceforge/internal/history"
	"voiceforge/internal/services"
	"voiceforge/internal/testsupport"
)

func TestCloneCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.writeSource(t)
	workDir := filepath.Join(env.baseDir, "job")
	exported := filepath.Join(env.baseDir, "export", "cloned.wav")

	out, err := env.run(t, "clone", "--source", source, "--text", "hello", "--workdir", workDir, "--output", exported, "--json")
	if err != nil {
		t.Fatalf("clone failed: %v\n%s", err, out)
	}

	var summary jobSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Code != services.CodeOK || !summary.Signed {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.OutputPath != filepath.Join(workDir, "signed.wav") {
		t.Fatalf("unexpected output path %q", summary.OutputPath)
	}
	if summary.VoiceLabel != "Cloning voice" {
		t.Fatalf("unexpected voice label %q", summary.VoiceLabel)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "part0part1" {
		t.Fatalf("fragments must be merged in order, got %q", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(workDir, "rtvc_output_part*"))
	if len(leftovers) != 0 {
		t.Fatalf("fragments must be consumed, found %v", leftovers)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	entry, err := store.Get(context.Background(), summary.JobID)
	if err != nil || entry == nil {
		t.Fatalf("expected history entry, got %v (%v)", entry, err)
	}
	if entry.Status != history.StatusOK || entry.Kind != history.KindClone || !entry.Signed {
		t.Fatalf("unexpected history entry %+v", entry)
	}
}

func TestCloneCommandExitsWithFailureCode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "rtvc", "exit 0\n")
	source := env.writeSource(t)

	_, err := env.run(t, "clone", "--source", source, "--text", "hello")
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected exitError, got %v", err)
	}
	if exitErr.code != services.CodeNotFound {
		t.Fatalf("expected not-found code, got %d (%s)", exitErr.code, exitErr.message)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := store.List(context.Background(), 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d (%v)", len(entries), err)
	}
	if entries[0].Status != history.StatusFailed || entries[0].FailureCode != services.CodeNotFound {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestCloneCommandSignerFailureStillSucceeds(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "voicesign", "echo 'no key' >&2\nexit 2\n")
	source := env.writeSource(t)
	workDir := filepath.Join(env.baseDir, "job")

	out, err := env.run(t, "clone", "--source", source, "--text", "hello", "--workdir", workDir)
	if err != nil {
		t.Fatalf("clone failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, filepath.Join(workDir, "final.wav")) || !strings.Contains(out, "Signed:         no") {
		t.Fatalf("expected unsigned output in summary:\n%s", out)
	}
}

func TestCloneCommandMissingBinaryIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Speed.Command = "no-such-speedmatch"
	env.writeConfig(t)
	source := env.writeSource(t)

	_, err := env.run(t, "clone", "--source", source, "--text", "hello")
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != services.CodeInvalid {
		t.Fatalf("expected configuration failure, got %v", err)
	}
	if !strings.Contains(exitErr.message, "Speed matcher") {
		t.Fatalf("expected missing tool in message, got %q", exitErr.message)
	}
}

func TestTTSCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithVoice("amy", 4))
	exported := filepath.Join(env.baseDir, "speech.wav")

	out, err := env.run(t, "tts", "--text", "hello", "--voice", "AMY", "--output", exported, "--json")
	if err != nil {
		t.Fatalf("tts failed: %v\n%s", err, out)
	}
	var summary jobSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.SampleRate != 4 || summary.Duration != 1 || summary.VoiceLabel != "AMY" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(data) != 8 {
		t.Fatalf("expected 4 PCM samples, got %d bytes", len(data))
	}
}

func TestTTSCommandUnknownVoice(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithVoice("amy", 22050))
	_, err := env.run(t, "tts", "--text", "hello", "--voice", "ghost")
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != services.CodeNotFound {
		t.Fatalf("expected not-found exit, got %v", err)
	}
}

func TestRunReturnsExitCode(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithVoice("amy", 22050))
	if code := run([]string{"--config", env.configPath, "tts", "--text", "x", "--voice", "ghost"}); code != services.CodeNotFound {
		t.Fatalf("expected exit code %d, got %d", services.CodeNotFound, code)
	}
	if code := run([]string{"--config", env.configPath, "history"}); code != 0 {
		t.Fatalf("expected clean exit, got %d", code)
	}
}

func TestHistoryCommandRendersTable(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	ctx := context.Background()
	_ = store.Record(ctx, history.Entry{ID: "aaaaaaaa-1111", Kind: history.KindClone, VoiceLabel: "Cloning voice", OutputPath: "/out/a.wav", SynthesisTime: 1.5})
	_ = store.Record(ctx, history.Entry{ID: "bbbbbbbb-2222", Kind: history.KindTTS, FailureCode: 3, Message: "unknown voice ghost"})

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	for _, want := range []string{"aaaaaaaa", "bbbbbbbb", "/out/a.wav", "unknown voice ghost", "1.500"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = env.run(t, "history", "--json", "--limit", "1")
	if err != nil {
		t.Fatalf("history --json failed: %v", err)
	}
	var items []historyEntryJSON
	if err := json.Unmarshal([]byte(out), &items); err != nil || len(items) != 1 {
		t.Fatalf("expected one JSON entry, got %v (%v)", items, err)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"== Dependencies ==", "Cloning engine", "== Stages ==", "== History ==", "0 ok, 0 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("expected a healthy setup:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "new", "config.toml")

	out, err := env.run(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected target in output: %s", out)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, err := env.run(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	env.cfg.Translation.Enabled = true
	env.cfg.Translation.APIKey = "secret-key"
	env.writeConfig(t)
	out, err = env.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "secret-key") || !strings.Contains(out, "<redacted>") {
		t.Fatalf("expected api key to be redacted:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "config", "validate", "--strict")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration OK: "+env.configPath) {
		t.Fatalf("unexpected output:\n%s", out)
	}

	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("\n[speeed]\ncommand = \"x\"\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	f.Close()

	if _, err := env.run(t, "config", "validate"); err != nil {
		t.Fatalf("lenient validate should accept unknown keys: %v", err)
	}
	_, err = env.run(t, "config", "validate", "--strict")
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != services.CodeInvalid || !strings.Contains(exitErr.message, "speeed") {
		t.Fatalf("expected strict validation failure, got %v", err)
	}
}

func TestGPULockSerializesJobs(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "gpu.lock")
	held := flock.New(lockPath)
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("pre-lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	ran := false
	err := withGPULock(ctx, lockPath, true, testLogger(), func() error { ran = true; return nil })
	if err == nil || ran {
		t.Fatalf("expected lock wait to time out, err=%v ran=%v", err, ran)
	}

	if err := held.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := withGPULock(context.Background(), lockPath, true, testLogger(), func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("expected job to run once the lock is free, err=%v", err)
	}

	ran = false
	if err := withGPULock(context.Background(), "", false, testLogger(), func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatal("cpu jobs must not take the lock")
	}
}
