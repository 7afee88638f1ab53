// Package pipeline orchestrates the two speech pipelines.
//
// ClonePipeline turns a source recording and target text into speech in the
// source speaker's voice: optional translation, voice separation, cloning,
// fragment merge, enhancement, re-timing to the source pacing and best-effort
// signing, strictly in that order. TextToSpeech renders text with one
// pre-loaded voice model in a single stage.
//
// Both entry points return an Outcome and never panic or return a bare
// error: failures are reported as a numeric code plus a diagnostic message
// and no partial result is produced.
//
// Collaborators are injected as interfaces when a pipeline is constructed.
// Jobs must not share a working directory; the package does no locking.
package pipeline
