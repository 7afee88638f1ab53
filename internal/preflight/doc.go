// Package preflight provides readiness checks for the external tools,
// model artifacts, directories and services voiceforge depends on.
//
// These checks run in two contexts:
//   - The CLI runs RunAll before a clone or tts job and refuses to start
//     when a required check fails, so a misconfigured host fails fast.
//   - "voiceforge status" renders the individual results alongside the
//     per-stage health from StageHealth.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
