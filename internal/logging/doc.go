// Package logging builds the slog loggers used by the CLI and the pipelines.
//
// The console handler prints one line per record and lifts the job ID, job
// kind and stage out of the attributes into a bracketed prefix; the JSON
// handler writes the same records for log files. Context helpers copy job
// metadata from a context.Context onto a logger so adapters never thread
// IDs by hand.
package logging
