// Package workdir inspects and prunes per-job working directories.
//
// Every clone or TTS job gets a directory named after its job ID under
// paths.work_dir. Stage tools leave intermediate audio there, so the
// directories grow until something removes them.
package workdir
