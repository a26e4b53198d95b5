package syncer

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"shufflepod/internal/media"
)

//go:generate mockgen -source=executor.go -destination=mock_fetcher_test.go -package=syncer

// Fetcher retrieves the raw media bytes for one episode. Failures are
// per-episode and opaque; the executor records them without retrying.
type Fetcher interface {
	Fetch(ctx context.Context, ep media.Episode) ([]byte, error)
}

// Outcome is the result of one attempted download.
type Outcome struct {
	Episode media.Episode
	Name    string // canonical filename, set when written
	Err     error
}

// OK reports whether the episode was fetched and committed.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report summarizes one executed plan.
type Report struct {
	// Deleted and Renamed count the phase-1 operations that succeeded.
	Deleted int
	Renamed int

	// FileFailures counts phase-1 deletions/renames that failed. Each
	// failure is logged; none of them stop the run.
	FileFailures int

	// Outcomes holds one entry per attempted download, in completion
	// order.
	Outcomes []Outcome
}

// Downloaded returns the outcomes that committed a file.
func (r *Report) Downloaded() []Outcome {
	var ok []Outcome
	for _, o := range r.Outcomes {
		if o.OK() {
			ok = append(ok, o)
		}
	}

	return ok
}

// Failed returns the outcomes whose fetch or write failed.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}

	return failed
}

// Executor applies a Plan to the library: deletes and renames first,
// synchronously, then downloads with bounded concurrency.
type Executor struct {
	lib     *media.Library
	fetcher Fetcher
	workers int
	logger  *slog.Logger
}

// NewExecutor creates an executor. workers bounds the number of
// downloads in flight; values below 1 are clamped to 1.
func NewExecutor(lib *media.Library, fetcher Fetcher, workers int, logger *slog.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}

	return &Executor{
		lib:     lib,
		fetcher: fetcher,
		workers: workers,
		logger:  logger,
	}
}

// Execute runs the plan. Phase 1 (deletes, then renames) completes fully
// before any download starts, so renames never race with writes to
// overlapping names. Each download's outcome is independent: a failed
// fetch neither cancels other downloads nor rolls back phase 1.
// Cancelling ctx abandons in-flight fetches; nothing is committed for
// them because only the atomic rename publishes a file.
func (e *Executor) Execute(ctx context.Context, plan Plan) *Report {
	report := &Report{}

	e.applyFileOps(plan, report)
	e.runDownloads(ctx, plan.Download, report)

	return report
}

// applyFileOps is phase 1: deletions then renames. Individual failures
// (file vanished, permission denied) are logged and counted, and the
// remaining operations still run.
func (e *Executor) applyFileOps(plan Plan, report *Report) {
	for _, entry := range plan.Delete {
		if err := e.lib.Remove(entry.Name); err != nil {
			report.FileFailures++
			e.logger.Warn("deleting stale episode",
				slog.String("file", entry.Name),
				slog.String("error", err.Error()),
			)

			continue
		}

		report.Deleted++
		e.logger.Info("deleted stale episode", slog.String("file", entry.Name))
	}

	for _, op := range plan.Rename {
		if err := e.lib.Rename(op.OldName, op.NewName); err != nil {
			report.FileFailures++
			e.logger.Warn("renaming episode",
				slog.String("from", op.OldName),
				slog.String("to", op.NewName),
				slog.String("error", err.Error()),
			)

			continue
		}

		report.Renamed++
		e.logger.Info("renamed episode",
			slog.String("from", op.OldName),
			slog.String("to", op.NewName),
		)
	}
}

// runDownloads is phase 2: fetch every episode in the download set with
// at most e.workers in flight, writing each atomically to its canonical
// name. Outcomes are collected in completion order; workers always
// return nil so one failure never cancels the rest.
func (e *Executor) runDownloads(ctx context.Context, episodes []media.Episode, report *Report) {
	if len(episodes) == 0 {
		return
	}

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, ep := range episodes {
		ep := ep
		g.Go(func() error {
			outcome := e.download(ctx, ep)

			mu.Lock()
			report.Outcomes = append(report.Outcomes, outcome)
			mu.Unlock()

			return nil
		})
	}

	// Workers return nil, so Wait only reflects ctx cancellation, which
	// is already captured in the per-episode outcomes.
	_ = g.Wait()
}

func (e *Executor) download(ctx context.Context, ep media.Episode) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Episode: ep, Err: err}
	}

	data, err := e.fetcher.Fetch(ctx, ep)
	if err != nil {
		e.logger.Warn("fetching episode",
			slog.String("uuid", ep.UUID),
			slog.String("title", ep.Title),
			slog.String("error", err.Error()),
		)

		return Outcome{Episode: ep, Err: err}
	}

	name := ep.Filename()
	if err := e.lib.WriteFileAtomic(name, data); err != nil {
		e.logger.Warn("writing episode",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)

		return Outcome{Episode: ep, Err: err}
	}

	e.logger.Info("downloaded episode",
		slog.String("title", ep.Title),
		slog.String("file", name),
		slog.Int("bytes", len(data)),
	)

	return Outcome{Episode: ep, Name: name}
}
