package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voiceforge/internal/config"
	"voiceforge/internal/logging"
	"voiceforge/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	binDir     string
	baseDir    string
}

const ffmpegStub = `in=""; out=""; concat=0
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; out="$2"; shift 2; continue;;
    -f) [ "$2" = concat ] && concat=1; out="$2"; shift 2; continue;;
  esac
  out="$1"
  shift
done
if [ "$in" = "pipe:0" ]; then
  cat > "$out"
elif [ "$concat" = 1 ]; then
  sed -n "s/^file '\(.*\)'$/\1/p" "$in" | while read -r f; do cat "$f"; done > "$out"
else
  cp "$in" "$out"
fi
`

const ffprobeStub = `printf '%s' '{"streams":[{"index":0,"codec_name":"pcm_s16le","codec_type":"audio"}],"format":{"format_name":"wav","duration":"1.0"}}'
`

const unmixStub = `mode="$1"; shift
while [ $# -gt 0 ]; do
  case "$1" in
    --input) in="$2"; shift;;
    --output-dir) dir="$2"; shift;;
  esac
  shift
done
if [ "$mode" = separate ]; then
  cp "$in" "$dir/vocals.wav"
  echo vocals.wav
else
  cp "$in" "$dir/trimmed_vocals.wav"
  echo "$dir/trimmed_vocals.wav"
fi
`

const rtvcStub = `while [ $# -gt 0 ]; do
  case "$1" in
    --output-dir) dir="$2"; shift;;
    --part-name) part="$2"; shift;;
  esac
  shift
done
printf 'part0' > "$dir/${part}0.wav"
printf 'part1' > "$dir/${part}1.wav"
`

const voicefixerStub = `while [ $# -gt 0 ]; do
  case "$1" in
    --input) in="$2"; shift;;
    --output) out="$2"; shift;;
  esac
  shift
done
cp "$in" "$out"
`

const speedmatchStub = `while [ $# -gt 0 ]; do
  case "$1" in
    --target) target="$2"; shift;;
  esac
  shift
done
out="$(dirname "$target")/final.wav"
cp "$target" "$out"
echo "$out"
`

const signerStub = `while [ $# -gt 0 ]; do
  case "$1" in
    --input) in="$2"; shift;;
    --output-dir) dir="$2"; shift;;
  esac
  shift
done
cp "$in" "$dir/signed.wav"
echo signed.wav
`

const piperStub = `cat > /dev/null
printf '\001\000\002\000\003\000\004\000'
`

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("VOICEFORGE_TRANSLATION_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	opts = append(opts, testsupport.WithModelFiles())
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)

	binDir := filepath.Join(base, "bin")
	stubs := map[string]string{
		"ffmpeg":     ffmpegStub,
		"ffprobe":    ffprobeStub,
		"unmix":      unmixStub,
		"rtvc":       rtvcStub,
		"voicefixer": voicefixerStub,
		"speedmatch": speedmatchStub,
		"voicesign":  signerStub,
		"piper":      piperStub,
	}
	for name, body := range stubs {
		testsupport.WriteScript(t, binDir, name, body)
	}
	testsupport.PrependPath(t, binDir)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "voiceforge.toml"),
		binDir:     binDir,
		baseDir:    base,
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// stub replaces one tool script.
func (e *cliTestEnv) stub(t *testing.T, name, body string) {
	t.Helper()
	testsupport.WriteScript(t, e.binDir, name, body)
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) writeSource(t *testing.T) string {
	t.Helper()
	source := filepath.Join(e.baseDir, "source.wav")
	if err := os.WriteFile(source, []byte("source-voice"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return source
}

func testLogger() *slog.Logger {
	return logging.NewNop()
}
