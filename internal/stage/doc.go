// Package stage runs named pipeline stages with uniform logging, timing and
// error normalisation, and describes stage readiness through Health.
package stage
