// Package services defines shared utilities consumed by the pipeline stages
// and the adapters for external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the numeric failure codes reported at the pipeline boundary.
//   - A CommandRunner abstraction that makes subprocess execution of model
//     CLIs and media tools testable.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
