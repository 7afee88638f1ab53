// Package language provides unified language code normalization and mapping.
//
// Pipeline callers pass languages as ISO 639-1/639-2 codes, English words, or
// BCP 47 tags; this package reduces them to ISO 639-1 and human-readable names
// for the translation prompt.
package language
