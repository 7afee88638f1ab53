// Package fragments merges the numbered audio fragments written by the
// cloning engine into a single file.
//
// Fragments are selected by name prefix and the .wav extension, ordered by
// plain string comparison of their file names, silence-trimmed into
// trimmed_<name> siblings, listed in a merged_files.txt concat manifest and
// joined by a lossless concatenation tool. Merging consumes its inputs: the
// fragments, their trimmed copies and the manifest are removed afterwards,
// so a second merge over the same directory finds nothing.
//
// Ordering is lexicographic, not numeric. Producers that emit more than ten
// fragments must zero-pad their ordinals.
package fragments
