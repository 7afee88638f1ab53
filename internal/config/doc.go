// Package config loads, normalizes, and validates voiceforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), resolves model artifacts against the model directory, reads
// TOML files, and honours environment fallbacks such as
// VOICEFORGE_TRANSLATION_API_KEY. The Config type centralizes every knob the
// pipelines and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
