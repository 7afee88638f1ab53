package pipeline

import (
	"fmt"
	"math"

	"voiceforge/internal/services"
)

// Result is the payload of a successful pipeline run. It is either a
// CloneResult or a SynthesisResult.
type Result interface {
	Label() string
	Path() string
	Bytes() []byte
	isResult()
}

// CloneResult is produced by ClonePipeline. Cloned output carries no sample
// rate or duration.
type CloneResult struct {
	JobID         string
	VoiceLabel    string
	SynthesisTime float64
	OutputPath    string
	Audio         []byte
	Signed        bool
}

func (r CloneResult) Label() string { return r.VoiceLabel }
func (r CloneResult) Path() string  { return r.OutputPath }
func (r CloneResult) Bytes() []byte { return r.Audio }
func (CloneResult) isResult()       {}

// SynthesisResult is produced by TextToSpeech.
type SynthesisResult struct {
	JobID         string
	VoiceLabel    string
	SampleRate    int
	Duration      float64
	SynthesisTime float64
	OutputPath    string
	Audio         []byte
}

func (r SynthesisResult) Label() string { return r.VoiceLabel }
func (r SynthesisResult) Path() string  { return r.OutputPath }
func (r SynthesisResult) Bytes() []byte { return r.Audio }
func (SynthesisResult) isResult()       {}

// Status is the coarse result of a pipeline run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome is what a pipeline entry point returns. On success Result is set
// and Code is services.CodeOK; on failure Result is nil and Message holds
// the diagnostic.
type Outcome struct {
	Status  Status
	Code    int
	Result  Result
	Message string
}

// OK reports whether the run succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

func succeeded(result Result) Outcome {
	return Outcome{Status: StatusOK, Code: services.CodeOK, Result: result}
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Code: services.FailureCode(err), Message: err.Error()}
}

func panicked(value any) Outcome {
	return Outcome{Status: StatusFailed, Code: services.CodeFailed, Message: fmt.Sprintf("internal error: %v", value)}
}

// AudioBuffer is mono 16-bit PCM held in memory.
type AudioBuffer struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the buffer length in seconds, or 0 without a sample rate.
func (b AudioBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// SynthesisOptions tune a TTS model call. Zero values use model defaults.
type SynthesisOptions struct {
	Speaker     int
	LengthScale float64
	NoiseScale  float64
}

// Round3 rounds seconds to millisecond precision for reporting.
func Round3(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}
