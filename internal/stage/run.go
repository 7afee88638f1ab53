package stage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voiceforge/internal/logging"
	"voiceforge/internal/services"
)

// Func is the body of one pipeline stage.
type Func func(ctx context.Context) error

// Timing records how long a named stage ran and how it ended.
type Timing struct {
	Name    string
	Elapsed time.Duration
	Err     error
}

// Runner executes named stages in order, logging their start, completion
// and failure, and keeps their timings for the caller.
type Runner struct {
	logger  *slog.Logger
	timings []Timing
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger}
}

// Run executes fn under the stage name. Errors that carry no service marker
// are wrapped so they still report the stage that produced them.
func (r *Runner) Run(ctx context.Context, name string, fn Func) error {
	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, r.logger)
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(started)
	if err != nil && !services.Marked(err) {
		err = services.Wrap(services.ErrTransient, name, "run", "", err)
	}
	r.timings = append(r.timings, Timing{Name: name, Elapsed: elapsed, Err: err})

	if err != nil {
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.Int("failure_code", services.FailureCode(err)),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

// Timings returns the recorded stage timings in execution order.
func (r *Runner) Timings() []Timing {
	return append([]Timing(nil), r.timings...)
}

// Elapsed sums the time spent in the named stages. With no names it sums
// every stage.
func (r *Runner) Elapsed(names ...string) time.Duration {
	var total time.Duration
	for _, timing := range r.timings {
		if len(names) == 0 || contains(names, timing.Name) {
			total += timing.Elapsed
		}
	}
	return total
}

// Summary renders the timings as "name=1.234s" pairs.
func (r *Runner) Summary() string {
	parts := make([]string, 0, len(r.timings))
	for _, timing := range r.timings {
		parts = append(parts, fmt.Sprintf("%s=%.3fs", timing.Name, timing.Elapsed.Seconds()))
	}
	return strings.Join(parts, " ")
}

func hintFor(err error) string {
	switch services.FailureCode(err) {
	case services.CodeInvalid:
		return "check the job inputs and configuration"
	case services.CodeNotFound:
		return "check that the input exists and carries an audio stream"
	case services.CodeExternalTool:
		return "rerun with tools.show_tool_output enabled to see tool output"
	case services.CodeTimeout:
		return "the operation timed out; retry or raise the timeout"
	default:
		return "check logs for details"
	}
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
