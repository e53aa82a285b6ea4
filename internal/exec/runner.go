package exec

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codecollab/internal/models"
)

// execDelay mimics the backend round-trip of a real execution service. It
// is counted inside the measured execution time.
const execDelay = 500 * time.Millisecond

// Runner evaluates JavaScript in an embedded interpreter and returns a
// canned result for every other language. Faults are recovered into the
// result, never raised past this boundary.
type Runner struct {
	log             *zap.Logger
	simulateLatency bool
	wallTime        time.Duration
}

func NewRunner(log *zap.Logger, simulateLatency bool, wallTime time.Duration) *Runner {
	return &Runner{log: log, simulateLatency: simulateLatency, wallTime: wallTime}
}

func (r *Runner) Execute(ctx context.Context, code string, lang models.Language) models.ExecutionResult {
	start := time.Now()

	if r.simulateLatency {
		pause(ctx, execDelay)
	}

	if lang == models.LangJavaScript {
		output, errMsg := evalJavaScript(code, r.wallTime)
		if errMsg != "" {
			r.log.Debug("evaluation fault", zap.String("error", errMsg))
		}
		return models.ExecutionResult{
			Output:        output,
			Error:         errMsg,
			ExecutionTime: millisSince(start),
		}
	}

	return models.ExecutionResult{
		Output:        fmt.Sprintf("[Mock] Code execution for %s is simulated.\nYour code would run here in a real environment.", lang),
		ExecutionTime: millisSince(start),
	}
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
