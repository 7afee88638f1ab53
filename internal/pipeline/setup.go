package pipeline

import (
	"context"
	"sync"
)

// Setup runs a process-wide bootstrap once. Success is memoised; a failed
// attempt is retried on the next call.
type Setup struct {
	fn   func(context.Context) error
	mu   sync.Mutex
	done bool
}

// NewSetup wraps fn in a guard.
func NewSetup(fn func(context.Context) error) *Setup {
	return &Setup{fn: fn}
}

// Ensure runs the bootstrap unless a previous call succeeded.
func (s *Setup) Ensure(ctx context.Context) error {
	if s == nil || s.fn == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	if err := s.fn(ctx); err != nil {
		return err
	}
	s.done = true
	return nil
}
