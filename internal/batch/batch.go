// Package batch scans the record store for curation-eligible rows and drives
// the per-record processor over them, sequentially or with bounded workers.
// A file lock enforces a single run at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/records"
	"curator/internal/services"
)

// Runner executes the curation transition for one record position.
type Runner interface {
	ProcessOne(ctx context.Context, position int64) (*records.Record, error)
}

// Summary reports batch outcomes. Processed counts records that reached a
// terminal state; Errors counts records skipped or failed without one.
type Summary struct {
	Processed int
	Errors    int
}

// Coordinator selects eligible records and runs them through a Runner.
type Coordinator struct {
	cfg    *config.Config
	store  records.Store
	runner Runner
	logger *slog.Logger
	lock   *flock.Flock
}

// New constructs a coordinator. The run lock lives in the configured log
// directory so concurrent invocations on the same corpus exclude each other.
func New(cfg *config.Config, store records.Store, runner Runner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		cfg:    cfg,
		store:  store,
		runner: runner,
		logger: logger,
		lock:   flock.New(filepath.Join(cfg.Paths.LogDir, "curator.lock")),
	}
}

// RunBatch processes every pending record that carries a document reference,
// in position order. The store is checkpointed after each processed record,
// so a crash mid-batch loses at most one record's progress. Per-record
// failures are counted, never fatal; store write failures abort immediately
// with the partial summary.
func (c *Coordinator) RunBatch(ctx context.Context) (Summary, error) {
	release, err := c.acquireLock()
	if err != nil {
		return Summary{}, err
	}
	defer release()

	started := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := c.logger.With(logging.String("run_id", runID))

	all, err := c.store.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list records: %w", err)
	}
	positions := make([]int64, 0, len(all))
	for _, rec := range all {
		if rec.Pending() && rec.HasDocumentRef() {
			positions = append(positions, rec.Position)
		}
	}
	logger.Info("batch started",
		logging.Int("eligible", len(positions)),
		logging.Int("workers", c.workers(len(positions))))

	summary, err := c.run(ctx, positions)
	if err != nil {
		logger.Error("batch aborted",
			logging.Int("processed", summary.Processed),
			logging.Int("errors", summary.Errors),
			logging.Error(err))
		return summary, err
	}
	logger.Info("batch finished",
		logging.Int("processed", summary.Processed),
		logging.Int("errors", summary.Errors),
		logging.Duration("elapsed", time.Since(started)))
	return summary, nil
}

// RunSingle processes exactly one record position, used for interactive
// retries. The same run lock applies.
func (c *Coordinator) RunSingle(ctx context.Context, position int64) (*records.Record, error) {
	release, err := c.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = services.WithRunID(ctx, uuid.NewString())
	rec, err := c.runner.ProcessOne(ctx, position)
	if err != nil {
		return nil, err
	}
	if err := c.store.Persist(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Coordinator) acquireLock() (func(), error) {
	ok, err := c.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another curation run is already in progress")
	}
	return func() { _ = c.lock.Unlock() }, nil
}

func (c *Coordinator) workers(eligible int) int {
	workers := c.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}
	if eligible > 0 && workers > eligible {
		workers = eligible
	}
	return workers
}

func (c *Coordinator) run(ctx context.Context, positions []int64) (Summary, error) {
	workers := c.workers(len(positions))
	if workers <= 1 {
		return c.runSequential(ctx, positions)
	}
	return c.runConcurrent(ctx, positions, workers)
}

func (c *Coordinator) runSequential(ctx context.Context, positions []int64) (Summary, error) {
	var summary Summary
	for _, position := range positions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if fatal := c.processPosition(ctx, position, &summary); fatal != nil {
			return summary, fatal
		}
	}
	return summary, nil
}

// runConcurrent fans positions out to workers. Each position is handed to
// exactly one worker, and record writes serialize at the store. The first
// fatal error cancels the remaining work.
func (c *Coordinator) runConcurrent(ctx context.Context, positions []int64, workers int) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		summary  Summary
		mu       sync.Mutex
		fatalErr error
		once     sync.Once
		wg       sync.WaitGroup
	)
	jobs := make(chan int64)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for position := range jobs {
				var local Summary
				fatal := c.processPosition(ctx, position, &local)
				mu.Lock()
				summary.Processed += local.Processed
				summary.Errors += local.Errors
				mu.Unlock()
				if fatal != nil {
					once.Do(func() {
						fatalErr = fatal
						cancel()
					})
					return
				}
			}
		}()
	}

	for _, position := range positions {
		select {
		case <-ctx.Done():
		case jobs <- position:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return summary, fatalErr
	}
	return summary, ctx.Err()
}

// processPosition runs one record, checkpoints the store, and folds the
// outcome into the summary. Only failures that make further store state
// unreliable are returned.
func (c *Coordinator) processPosition(ctx context.Context, position int64, summary *Summary) error {
	_, err := c.runner.ProcessOne(ctx, position)
	switch {
	case err == nil:
		if err := c.store.Persist(ctx); err != nil {
			return fmt.Errorf("record %d: %w", position, err)
		}
		summary.Processed++
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case services.FailureDisposition(err) == services.DispositionAbort:
		var persistErr *records.PersistError
		if errors.As(err, &persistErr) {
			return fmt.Errorf("record %d: %w", position, err)
		}
		summary.Errors++
		c.logger.Error("record failed", logging.Int64("record", position), logging.Error(err))
		return nil
	default:
		summary.Errors++
		c.logger.Warn("record skipped", logging.Int64("record", position), logging.Error(err))
		return nil
	}
}
