// Package engine owns the concurrent batch query orchestration: a bounded
// worker pool over the retrying fetcher, a success-only result cache, and
// incremental durable checkpoints as completions arrive out of order.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/core"
)

const (
	// DefaultConcurrency bounds in-flight lookups.
	DefaultConcurrency = 96
	// DefaultCheckpointInterval is how many completions pass between
	// durable store rewrites.
	DefaultCheckpointInterval = 100
)

// Lookup performs one warranty lookup. Implementations must be safe for
// concurrent use.
type Lookup interface {
	Fetch(ctx context.Context, serial string, sequence, total int) *core.QueryResult
}

// ResultStore accumulates results durably. Put and Save are only ever called
// from the orchestrator's completion-handling goroutine.
type ResultStore interface {
	Put(result *core.QueryResult)
	Save() error
}

// EventSink consumes per-result events and progress snapshots. Calls arrive
// serially from the completion-handling goroutine, in completion order, which
// is not submission order.
type EventSink interface {
	OnResult(result *core.QueryResult)
	OnProgress(completed, total int)
}

// Orchestrator turns an ordered list of distinct serials into a stream of
// completions bounded by a fixed worker concurrency, and drives the cache,
// the store, and the event sink as completions arrive.
type Orchestrator struct {
	Fetcher            Lookup
	Cache              *ResultCache
	Store              ResultStore
	Sink               EventSink
	Concurrency        int
	CheckpointInterval int
	Logger             *zap.Logger
	Clock              func() time.Time
}

type job struct {
	sequence int
	serial   string
}

// Run executes one batch to completion. Per-serial failures are collected
// into the summary's failed set rather than returned as an error; the batch
// always finishes. An empty serial list is a no-op.
func (o *Orchestrator) Run(ctx context.Context, serials []string) *core.BatchSummary {
	if ctx == nil {
		ctx = context.Background()
	}

	summary := &core.BatchSummary{
		RunID:     uuid.New().String(),
		StartedAt: o.now(),
		Total:     len(serials),
	}
	if len(serials) == 0 {
		return summary
	}

	logger := o.logger()
	total := len(serials)

	jobs := make(chan job)
	completions := make(chan *core.QueryResult)

	workers := o.concurrency()
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				completions <- o.Fetcher.Fetch(ctx, j.serial, j.sequence, total)
			}
		}()
	}

	// Dispatch in submission order. Cache hits skip the pool entirely but
	// still flow through the completion path so they count toward progress.
	go func() {
		cacheHits := 0
		for index, s := range serials {
			if cached := o.lookupCache(s); cached != nil {
				cacheHits++
				completions <- cached
				continue
			}
			jobs <- job{sequence: index + 1, serial: s}
		}
		close(jobs)
		wg.Wait()
		summary.FromCache = cacheHits
		close(completions)
	}()

	// Single-writer completion handling: all cache and store mutations
	// happen here, so two completions for the same serial cannot race.
	completed := 0
	failed := make(map[string]struct{})
	interval := o.checkpointInterval()

	for result := range completions {
		completed++

		if o.Sink != nil {
			o.Sink.OnResult(result)
			o.Sink.OnProgress(completed, total)
		}

		if result.Success() {
			summary.Succeeded++
			delete(failed, result.Serial)
			if o.Cache != nil {
				o.Cache.Record(result)
			}
			if o.Store != nil {
				o.Store.Put(result)
			}
		} else {
			failed[result.Serial] = struct{}{}
			logger.Warn("lookup failed",
				zap.String("serial", result.Serial),
				zap.Int("retries", result.RetryCount),
				zap.String("reason", result.FailureReason))
		}

		if o.Store != nil && interval > 0 && completed%interval == 0 {
			if err := o.Store.Save(); err != nil {
				summary.CheckpointErrors++
				logger.Error("checkpoint failed", zap.Error(err))
			}
		}
	}

	// Unconditional final checkpoint. A save failure is reported to the
	// operator but in-memory results stand.
	if o.Store != nil {
		if err := o.Store.Save(); err != nil {
			summary.CheckpointErrors++
			logger.Error("final store save failed", zap.Error(err))
		}
	}

	// Re-present the failed subset in submission order so the caller can
	// resubmit it directly.
	for _, s := range serials {
		if _, ok := failed[s]; ok {
			summary.FailedSerials = append(summary.FailedSerials, s)
			delete(failed, s)
		}
	}
	summary.Failed = len(summary.FailedSerials)

	logger.Info("batch finished",
		zap.String("run_id", summary.RunID),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("from_cache", summary.FromCache))

	return summary
}

func (o *Orchestrator) lookupCache(serial string) *core.QueryResult {
	if o.Cache == nil {
		return nil
	}
	return o.Cache.Lookup(serial)
}

func (o *Orchestrator) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

func (o *Orchestrator) checkpointInterval() int {
	if o.CheckpointInterval > 0 {
		return o.CheckpointInterval
	}
	return DefaultCheckpointInterval
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o *Orchestrator) now() time.Time {
	if o != nil && o.Clock != nil {
		return o.Clock()
	}
	return time.Now().UTC()
}
