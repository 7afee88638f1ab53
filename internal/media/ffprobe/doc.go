// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Prober runs ffprobe through a services.CommandRunner so callers can stub
// the binary in tests. Result helpers answer the questions the pipeline
// asks of an input file: does it carry real video (cover art excluded), how
// many audio streams, and how long is it.
package ffprobe
