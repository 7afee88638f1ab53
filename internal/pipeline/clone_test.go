package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceforge/internal/device"
	"voiceforge/internal/separation"
	"voiceforge/internal/services"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(call string) { r.calls = append(r.calls, call) }

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

type fakeTranslator struct {
	rec *recorder
	err error
}

func (f *fakeTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	f.rec.add("translate:" + lang)
	if f.err != nil {
		return "", f.err
	}
	return "[" + lang + "] " + text, nil
}

type fakeSeparator struct {
	rec  *recorder
	opts separation.Options
}

func (f *fakeSeparator) Separate(_ context.Context, _ string, dir string, opts separation.Options) (string, error) {
	f.rec.add("separate")
	f.opts = opts
	path := filepath.Join(dir, "vocals.wav")
	return path, writeFile(path, "voice")
}

type fakeCloner struct {
	rec    *recorder
	text   string
	dev    device.Device
	panics bool
	parts  int
}

func (f *fakeCloner) CloneVoice(_ context.Context, _ string, text, dir string, dev device.Device) error {
	f.rec.add("clone")
	if f.panics {
		panic("model exploded")
	}
	f.text, f.dev = text, dev
	for i := 0; i < f.parts; i++ {
		if err := writeFile(filepath.Join(dir, "rtvc_output_part"+string(rune('0'+i))+".wav"), "frag"); err != nil {
			return err
		}
	}
	return nil
}

type fakeMerger struct {
	rec     *recorder
	prefix  string
	empty   bool
	noWrite bool
}

func (f *fakeMerger) Merge(_ context.Context, dir, prefix, outputName string) (string, error) {
	f.rec.add("merge")
	f.prefix = prefix
	if f.empty {
		return "", nil
	}
	path := filepath.Join(dir, outputName)
	if f.noWrite {
		return path, nil
	}
	return path, writeFile(path, "merged")
}

type fakeEnhancer struct {
	rec *recorder
	dev device.Device
}

func (f *fakeEnhancer) Enhance(_ context.Context, _ string, dir string, dev device.Device) (string, error) {
	f.rec.add("enhance")
	f.dev = dev
	path := filepath.Join(dir, "enhanced.wav")
	return path, writeFile(path, "enhanced")
}

type fakeSpeed struct {
	rec       *recorder
	reference string
}

func (f *fakeSpeed) ProcessAndSave(_ context.Context, reference, target string) (string, error) {
	f.rec.add("speed")
	f.reference = reference
	path := filepath.Join(filepath.Dir(target), "final.wav")
	return path, writeFile(path, "final-audio")
}

type fakeSigner struct {
	rec    *recorder
	err    error
	panics bool
	write  bool
}

func (f *fakeSigner) Sign(_ context.Context, path, dir string) (string, error) {
	f.rec.add("sign")
	if f.panics {
		panic("signer crashed")
	}
	if f.err != nil {
		return "", f.err
	}
	if !f.write {
		return "", nil
	}
	signed := filepath.Join(dir, "signed.wav")
	return signed, writeFile(signed, "signed-audio")
}

type staticGPU bool

func (s staticGPU) GPUAvailable(context.Context) bool { return bool(s) }

type fixture struct {
	rec        *recorder
	translator *fakeTranslator
	separator  *fakeSeparator
	cloner     *fakeCloner
	merger     *fakeMerger
	enhancer   *fakeEnhancer
	speed      *fakeSpeed
	signer     *fakeSigner
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec:        rec,
		translator: &fakeTranslator{rec: rec},
		separator:  &fakeSeparator{rec: rec},
		cloner:     &fakeCloner{rec: rec, parts: 2},
		merger:     &fakeMerger{rec: rec},
		enhancer:   &fakeEnhancer{rec: rec},
		speed:      &fakeSpeed{rec: rec},
		signer:     &fakeSigner{rec: rec},
	}
}

func (f *fixture) pipeline(gpu bool) *ClonePipeline {
	return NewClonePipeline(CloneDeps{
		Translator: f.translator,
		Separator:  f.separator,
		Cloner:     f.cloner,
		Merger:     f.merger,
		Enhancer:   f.enhancer,
		Speed:      f.speed,
		Signer:     f.signer,
		GPU:        staticGPU(gpu),
	}, CloneSettings{Separation: separation.Options{Target: "vocals", TrimSilence: true}}, nil)
}

func newJob(t *testing.T) CloneJob {
	t.Helper()
	return CloneJob{
		Source:  "/media/source.wav",
		Text:    "hello there",
		WorkDir: filepath.Join(t.TempDir(), "fresh", "job"),
	}
}

func TestClonePipelineRunsStagesInOrder(t *testing.T) {
	f := newFixture()
	job := newJob(t)
	outcome := f.pipeline(false).Run(context.Background(), job)
	if !outcome.OK() {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if got := strings.Join(f.rec.calls, ","); got != "separate,clone,merge,enhance,speed,sign" {
		t.Fatalf("unexpected stage order: %s", got)
	}
	result, ok := outcome.Result.(CloneResult)
	if !ok {
		t.Fatalf("expected CloneResult, got %T", outcome.Result)
	}
	if result.VoiceLabel != "Cloning voice" || result.OutputPath != filepath.Join(job.WorkDir, "final.wav") {
		t.Fatalf("unexpected result %+v", result)
	}
	if string(result.Audio) != "final-audio" || result.Signed {
		t.Fatalf("unexpected audio %q signed=%v", result.Audio, result.Signed)
	}
	if result.SynthesisTime < 0 || result.JobID == "" {
		t.Fatalf("unexpected metadata %+v", result)
	}
	if outcome.Code != services.CodeOK {
		t.Fatalf("unexpected code %d", outcome.Code)
	}
	if f.merger.prefix != "rtvc_output_part" {
		t.Fatalf("unexpected merge prefix %q", f.merger.prefix)
	}
	if f.speed.reference != filepath.Join(job.WorkDir, "vocals.wav") {
		t.Fatalf("speed must be matched against the separated voice, got %q", f.speed.reference)
	}
	if f.cloner.text != "hello there" {
		t.Fatalf("text must be untouched without translation, got %q", f.cloner.text)
	}
}

func TestClonePipelineCreatesWorkDir(t *testing.T) {
	f := newFixture()
	job := newJob(t)
	if _, err := os.Stat(job.WorkDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected workdir to be absent before the run")
	}
	if outcome := f.pipeline(false).Run(context.Background(), job); !outcome.OK() {
		t.Fatalf("run failed: %+v", outcome)
	}
	if info, err := os.Stat(job.WorkDir); err != nil || !info.IsDir() {
		t.Fatalf("expected workdir to exist: %v", err)
	}
}

func TestClonePipelineTranslatesIntoSourceLanguage(t *testing.T) {
	f := newFixture()
	job := newJob(t)
	job.NeedsTranslation = true
	job.SourceLanguage = "es"
	if outcome := f.pipeline(false).Run(context.Background(), job); !outcome.OK() {
		t.Fatalf("run failed: %+v", outcome)
	}
	if f.rec.calls[0] != "translate:es" {
		t.Fatalf("translation must run first, got %v", f.rec.calls)
	}
	if f.cloner.text != "[es] hello there" {
		t.Fatalf("cloner must receive translated text, got %q", f.cloner.text)
	}
}

func TestClonePipelineTranslationFailureAborts(t *testing.T) {
	f := newFixture()
	f.translator.err = services.Wrap(services.ErrExternalTool, "translate", "complete", "llm down", nil)
	job := newJob(t)
	job.NeedsTranslation = true
	job.SourceLanguage = "fr"
	outcome := f.pipeline(false).Run(context.Background(), job)
	if outcome.OK() || outcome.Result != nil {
		t.Fatalf("expected failure without result, got %+v", outcome)
	}
	if outcome.Code != services.CodeExternalTool || !strings.Contains(outcome.Message, "llm down") {
		t.Fatalf("unexpected failure %+v", outcome)
	}
	if len(f.rec.calls) != 1 {
		t.Fatalf("no stage may run after translation fails, got %v", f.rec.calls)
	}
}

func TestClonePipelineSignerFailureKeepsUnsignedPath(t *testing.T) {
	for name, signer := range map[string]*fakeSigner{
		"error":    {err: errors.New("no signing key")},
		"panic":    {panics: true},
		"declined": {},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			signer.rec = f.rec
			f.signer = signer
			job := newJob(t)
			outcome := f.pipeline(false).Run(context.Background(), job)
			if !outcome.OK() {
				t.Fatalf("signing must never fail the job: %+v", outcome)
			}
			result := outcome.Result.(CloneResult)
			if result.OutputPath != filepath.Join(job.WorkDir, "final.wav") || result.Signed {
				t.Fatalf("expected unsigned path, got %+v", result)
			}
			if string(result.Audio) != "final-audio" {
				t.Fatalf("unexpected audio %q", result.Audio)
			}
		})
	}
}

func TestClonePipelineReturnsSignedFile(t *testing.T) {
	f := newFixture()
	f.signer.write = true
	job := newJob(t)
	outcome := f.pipeline(false).Run(context.Background(), job)
	result := outcome.Result.(CloneResult)
	if result.OutputPath != filepath.Join(job.WorkDir, "signed.wav") || !result.Signed || string(result.Audio) != "signed-audio" {
		t.Fatalf("expected signed output, got %+v", result)
	}
}

func TestClonePipelineWithoutSigner(t *testing.T) {
	f := newFixture()
	p := f.pipeline(false)
	p.deps.Signer = nil
	if outcome := p.Run(context.Background(), newJob(t)); !outcome.OK() {
		t.Fatalf("run failed: %+v", outcome)
	}
	for _, call := range f.rec.calls {
		if call == "sign" {
			t.Fatal("signer must not be called when absent")
		}
	}
}

func TestClonePipelineMergeFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeMerger)
		code   int
	}{
		{"no fragments", func(m *fakeMerger) { m.empty = true }, services.CodeNotFound},
		{"concat produced nothing", func(m *fakeMerger) { m.noWrite = true }, services.CodeExternalTool},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			tc.mutate(f.merger)
			outcome := f.pipeline(false).Run(context.Background(), newJob(t))
			if outcome.OK() || outcome.Code != tc.code {
				t.Fatalf("expected code %d, got %+v", tc.code, outcome)
			}
			if strings.Contains(strings.Join(f.rec.calls, ","), "enhance") {
				t.Fatal("enhancement must not run after a failed merge")
			}
		})
	}
}

func TestClonePipelineRecoversPanics(t *testing.T) {
	f := newFixture()
	f.cloner.panics = true
	outcome := f.pipeline(false).Run(context.Background(), newJob(t))
	if outcome.OK() || outcome.Code != services.CodeFailed {
		t.Fatalf("expected generic failure, got %+v", outcome)
	}
	if !strings.Contains(outcome.Message, "model exploded") {
		t.Fatalf("expected panic value in message, got %q", outcome.Message)
	}
}

func TestClonePipelineValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CloneJob)
		code   int
	}{
		{"missing text", func(j *CloneJob) { j.Text = " " }, services.CodeInvalid},
		{"missing source", func(j *CloneJob) { j.Source = "" }, services.CodeInvalid},
		{"translation without language", func(j *CloneJob) { j.NeedsTranslation = true }, services.CodeInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			job := newJob(t)
			tc.mutate(&job)
			outcome := f.pipeline(false).Run(context.Background(), job)
			if outcome.Code != tc.code || len(f.rec.calls) != 0 {
				t.Fatalf("expected code %d with no stage calls, got %+v %v", tc.code, outcome, f.rec.calls)
			}
		})
	}
}

func TestClonePipelineDeviceSelection(t *testing.T) {
	cases := []struct {
		requested, available bool
		want                 device.Device
	}{
		{false, false, device.CPU},
		{false, true, device.CPU},
		{true, false, device.CPU},
		{true, true, device.GPU},
	}
	for _, tc := range cases {
		f := newFixture()
		job := newJob(t)
		job.UseGPU = tc.requested
		if outcome := f.pipeline(tc.available).Run(context.Background(), job); !outcome.OK() {
			t.Fatalf("run failed: %+v", outcome)
		}
		if f.cloner.dev != tc.want || f.enhancer.dev != tc.want {
			t.Fatalf("requested=%v available=%v: cloner=%s enhancer=%s want %s",
				tc.requested, tc.available, f.cloner.dev, f.enhancer.dev, tc.want)
		}
		if f.separator.opts.UseGPU != tc.requested || f.separator.opts.Target != "vocals" || !f.separator.opts.TrimSilence {
			t.Fatalf("unexpected separation options %+v", f.separator.opts)
		}
	}
}

func TestClonePipelineSetupFailure(t *testing.T) {
	f := newFixture()
	p := f.pipeline(false)
	p.deps.Setup = NewSetup(func(context.Context) error { return errors.New("models missing") })
	outcome := p.Run(context.Background(), newJob(t))
	if outcome.Code != services.CodeInvalid || len(f.rec.calls) != 0 {
		t.Fatalf("expected configuration failure before any stage, got %+v", outcome)
	}
}
