// Command voiceforge is the operator CLI for the speech pipelines.
//
// `voiceforge clone` translates text when asked, separates the speaker's
// voice from a source recording, clones it onto the text and post-processes
// the result. `voiceforge tts` synthesizes text with a pre-loaded voice.
// Both commands exit with the pipeline's failure code so scripts can branch
// on the cause. `history`, `status` and `config` inspect past runs and the
// host setup.
package main
