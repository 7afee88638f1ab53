package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	// ErrNoAudio marks a transcoding run that produced no usable audio file.
	ErrNoAudio = errors.New("no audio extracted")
)

// Failure codes reported alongside a diagnostic message at the pipeline
// boundary. CodeOK is reserved for success.
const (
	CodeOK           = 0
	CodeFailed       = 1
	CodeInvalid      = 2
	CodeNotFound     = 3
	CodeExternalTool = 4
	CodeTimeout      = 5
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Marked reports whether err already carries one of the sentinel markers.
func Marked(err error) bool {
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrTransient, ErrNoAudio} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

// FailureCode maps a stage error to the status code reported to callers.
func FailureCode(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return CodeInvalid
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoAudio):
		return CodeNotFound
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrExternalTool):
		return CodeExternalTool
	default:
		return CodeFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
