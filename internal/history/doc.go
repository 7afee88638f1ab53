// Package history keeps a SQLite ledger of pipeline invocations.
//
// Every clone or text-to-speech run the CLI performs is recorded with its
// outcome code, voice label, output path and timings so `voiceforge history`
// and `voiceforge status` can report on past work. The ledger is advisory:
// pipelines never read it, and a failure to record does not change a job's
// outcome.
//
// Schema changes bump schemaVersion; users delete the database to adopt the
// new schema.
package history
