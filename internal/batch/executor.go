package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"logomatch/internal/failures"
	"logomatch/internal/fileutil"
	"logomatch/internal/logging"
)

// ErrOutputNotEmpty is returned when the output directory holds entries and
// reset was not requested.
var ErrOutputNotEmpty = errors.New("output directory is not empty")

// Options configure an Executor.
type Options struct {
	// Workers bounds concurrent copies. Zero uses the number of CPUs.
	Workers int
	// Verify re-reads each destination and compares SHA-256 digests.
	Verify bool
	// Reset empties a non-empty output directory before copying.
	Reset  bool
	Logger *slog.Logger
}

// Result is the outcome of one operation.
type Result struct {
	Operation Operation     `json:"operation"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Report aggregates an execution.
type Report struct {
	Succeeded []Result      `json:"succeeded"`
	Failed    []Result      `json:"failed"`
	Cleared   int           `json:"cleared"`
	Duration  time.Duration `json:"duration"`
}

// Executor runs plans.
type Executor struct {
	workers int
	verify  bool
	reset   bool
	logger  *slog.Logger
}

// NewExecutor builds an executor.
func NewExecutor(opts Options) *Executor {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		workers: workers,
		verify:  opts.Verify,
		reset:   opts.Reset,
		logger:  logging.NewComponentLogger(logger, "batch"),
	}
}

// Execute prepares the output directory and runs every operation. Directory
// preparation failures are returned before any copy starts. Copy failures are
// recorded in the report and never stop sibling copies. Operations not yet
// started when ctx is cancelled fail with the context error. progress, when
// non-nil, is called once per operation and never concurrently.
func (e *Executor) Execute(ctx context.Context, plan Plan, progress func(Result)) (Report, error) {
	start := time.Now()
	report := Report{}

	cleared, err := e.prepare(plan.OutputDir)
	if err != nil {
		return report, err
	}
	report.Cleared = cleared

	results := make([]Result, len(plan.Operations))
	var (
		wg         sync.WaitGroup
		progressMu sync.Mutex
	)
	semaphore := make(chan struct{}, e.workers)

	for i, op := range plan.Operations {
		wg.Add(1)
		go func(idx int, op Operation) {
			defer wg.Done()
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
			}

			result := e.run(ctx, op)
			results[idx] = result
			if progress != nil {
				progressMu.Lock()
				progress(result)
				progressMu.Unlock()
			}
		}(i, op)
	}
	wg.Wait()

	for _, result := range results {
		if result.Err != nil {
			report.Failed = append(report.Failed, result)
			continue
		}
		report.Succeeded = append(report.Succeeded, result)
	}
	report.Duration = time.Since(start)

	e.logger.Info("batch complete",
		logging.Int("succeeded", len(report.Succeeded)),
		logging.Int("failed", len(report.Failed)),
		logging.Duration("duration", report.Duration),
		logging.String(logging.FieldEventType, "batch_complete"),
	)
	return report, nil
}

func (e *Executor) run(ctx context.Context, op Operation) Result {
	result := Result{Operation: op}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}
	started := time.Now()
	copyFile := fileutil.CopyFile
	if e.verify {
		copyFile = fileutil.CopyFileVerified
	}
	if err := copyFile(op.From, op.To); err != nil {
		result.Err = failures.Wrap(failures.ErrOperation, "batch", "copy", op.SourceID+" -> "+op.To, err)
		logging.WarnWithContext(e.logger, "copy failed", "copy_failed",
			logging.String(logging.FieldSourceID, op.SourceID),
			logging.String("name", op.Name),
			logging.String("destination", op.To),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the source file exists and output_dir is writable"),
			logging.String(logging.FieldImpact, "this logo was not copied; other copies continue"),
		)
	} else {
		e.logger.Debug("copied",
			logging.String(logging.FieldSourceID, op.SourceID),
			logging.String("destination", op.To))
	}
	result.Duration = time.Since(started)
	return result
}

// prepare makes sure the output directory exists and is empty, clearing it
// first when reset is enabled. It returns the number of removed entries.
func (e *Executor) prepare(dir string) (int, error) {
	if dir == "" {
		return 0, failures.Wrap(failures.ErrConfiguration, "batch", "prepare", "output directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, failures.Wrap(failures.ErrPersistence, "batch", "prepare", "create "+dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, failures.Wrap(failures.ErrPersistence, "batch", "prepare", "read "+dir, err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if !e.reset {
		return 0, fmt.Errorf("%w: %s holds %d entries", ErrOutputNotEmpty, dir, len(entries))
	}
	cleared := ClearDirectory(dir, e.logger)
	if len(cleared.Errors) > 0 {
		first := cleared.Errors[0]
		return len(cleared.Removed), failures.Wrap(failures.ErrPersistence, "batch", "reset",
			fmt.Sprintf("%d entries could not be removed", len(cleared.Errors)),
			fmt.Errorf("%s: %w", first.Path, first.Error))
	}
	return len(cleared.Removed), nil
}
