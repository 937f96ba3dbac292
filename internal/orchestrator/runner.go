// Package orchestrator executes the enabled detector set against a shared
// Env, handling cancellation between detectors, per-detector failure
// isolation, optional bounded-parallel execution, and a soft memory-limit
// warning sampled between detectors (spec.md §5, §6, §7).
//
// Grounded on the teacher's internal/scanner.BlockScanner: the same
// atomic-counter progress tracking and "check ctx.Done() between units of
// work, never inside one" cancellation discipline, generalized from a
// block-height loop to a detector-catalog loop.
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/signals"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Progress is a snapshot of the run's state, safe to read concurrently
// from a progress-reporting server while the run proceeds.
type Progress struct {
	TotalDetectors     int   `json:"totalDetectors"`
	DetectorsCompleted int64 `json:"detectorsCompleted"`
	SignalsFound       int64 `json:"signalsFound"`
	Running            bool  `json:"running"`
}

// Runner executes a detector catalog against one Env.
type Runner struct {
	Env      *signals.Env
	Catalog  []signals.Detector
	Parallel int // max concurrent detectors; 0 or 1 runs sequentially
	Log      zerolog.Logger

	// MemoryLimitBytes is the soft ceiling from --memory-limit (spec.md §6).
	// Zero disables the check. It is never enforced by killing the run —
	// only sampled between detectors and logged as a warning, once, the
	// first time heap usage crosses it (spec.md §5).
	MemoryLimitBytes int64

	completed atomic.Int64
	found     atomic.Int64
	running   atomic.Bool
	memWarned atomic.Bool
}

// Result is the outcome of running one detector.
type Result struct {
	Detector signals.Detector
	Signals  []models.Signal
	Err      error
}

// Progress returns a snapshot safe to call from another goroutine while
// Run is in flight.
func (r *Runner) Progress() Progress {
	return Progress{
		TotalDetectors:     len(r.Catalog),
		DetectorsCompleted: r.completed.Load(),
		SignalsFound:       r.found.Load(),
		Running:            r.running.Load(),
	}
}

// Run executes every detector in r.Catalog, returning one Result per
// detector in catalog order regardless of execution order. A detector that
// panics or returns an error is recorded in Result.Err and contributes no
// signals — it never aborts the run (spec.md §7 "per-detector failure").
// ctx is checked between detectors (sequential mode) or before each
// detector's dispatch (parallel mode); a cancelled detector's Result has
// Err set to ctx.Err() and Signals nil.
func (r *Runner) Run(ctx context.Context) []Result {
	r.running.Store(true)
	defer r.running.Store(false)

	results := make([]Result, len(r.Catalog))

	if r.Parallel <= 1 {
		for i, d := range r.Catalog {
			select {
			case <-ctx.Done():
				results[i] = Result{Detector: d, Err: ctx.Err()}
				continue
			default:
			}
			results[i] = r.runOne(ctx, d)
		}
		return results
	}

	sem := make(chan struct{}, r.Parallel)
	var wg sync.WaitGroup
	for i, d := range r.Catalog {
		select {
		case <-ctx.Done():
			results[i] = Result{Detector: d, Err: ctx.Err()}
			continue
		default:
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, d signals.Detector) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, d)
		}(i, d)
	}
	wg.Wait()
	return results
}

// runOne executes a single detector, converting a panic into an error so
// one misbehaving detector never takes down the run.
func (r *Runner) runOne(ctx context.Context, d signals.Detector) (result Result) {
	defer func() {
		r.completed.Add(1)
		if rec := recover(); rec != nil {
			r.Log.Error().Str("detector", d.Name).Interface("panic", rec).Msg("detector panicked, contributing no rows")
			result = Result{Detector: d, Err: fmt.Errorf("detector %s panicked: %v", d.Name, rec)}
		}
	}()

	out, err := d.Run(ctx, r.Env)
	r.checkMemory(d.Name)
	if err != nil {
		r.Log.Error().Err(err).Str("detector", d.Name).Msg("detector failed, contributing no rows")
		return Result{Detector: d, Err: err}
	}
	r.found.Add(int64(len(out)))
	return Result{Detector: d, Signals: out}
}

// checkMemory samples heap usage right after a detector finishes and warns
// once, the first time it crosses MemoryLimitBytes. A soft guard only: it
// never aborts the run, matching spec.md §6's "accepted" memory-limit
// semantics rather than a hard cap.
func (r *Runner) checkMemory(detector string) {
	if r.MemoryLimitBytes <= 0 || r.memWarned.Load() {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if int64(m.HeapAlloc) <= r.MemoryLimitBytes {
		return
	}
	if r.memWarned.CompareAndSwap(false, true) {
		r.Log.Warn().
			Str("detector", detector).
			Uint64("heapAllocBytes", m.HeapAlloc).
			Int64("memoryLimitBytes", r.MemoryLimitBytes).
			Msg("heap usage exceeded --memory-limit; continuing (soft guard only)")
	}
}

// Split separates results into the successful signal lists (ordered by
// catalog order, for merge.Merge), the names of detectors that ran
// successfully, and the names of detectors that were skipped or failed.
func Split(results []Result) (signalLists [][]models.Signal, ran, skipped []string) {
	for _, res := range results {
		if res.Err != nil {
			skipped = append(skipped, res.Detector.Name)
			continue
		}
		ran = append(ran, res.Detector.Name)
		signalLists = append(signalLists, res.Signals)
	}
	sort.Strings(ran)
	sort.Strings(skipped)
	return signalLists, ran, skipped
}
