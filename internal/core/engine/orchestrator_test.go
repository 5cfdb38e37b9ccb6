package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warrantylens/warrantylens/internal/core"
)

type stubFetcher struct {
	calls int32
	fetch func(serial string, sequence, total int, call int32) *core.QueryResult
}

func (s *stubFetcher) Fetch(ctx context.Context, serial string, sequence, total int) *core.QueryResult {
	call := atomic.AddInt32(&s.calls, 1)
	if s.fetch != nil {
		return s.fetch(serial, sequence, total, call)
	}
	return successFor(serial, sequence, total)
}

func successFor(serial string, sequence, total int) *core.QueryResult {
	return core.NewSuccessResult(serial, sequence, total, &core.WarrantyPayload{StatusCode: 200}, 0, core.Provenance{})
}

type recordingStore struct {
	puts    []*core.QueryResult
	saves   int
	saveErr error
}

func (s *recordingStore) Put(result *core.QueryResult) {
	s.puts = append(s.puts, result)
}

func (s *recordingStore) Save() error {
	s.saves++
	return s.saveErr
}

func (s *recordingStore) latest(serial string) *core.QueryResult {
	var last *core.QueryResult
	for _, r := range s.puts {
		if r.Serial == serial {
			last = r
		}
	}
	return last
}

type recordingSink struct {
	results  []*core.QueryResult
	progress [][2]int
}

func (s *recordingSink) OnResult(result *core.QueryResult) {
	s.results = append(s.results, result)
}

func (s *recordingSink) OnProgress(completed, total int) {
	s.progress = append(s.progress, [2]int{completed, total})
}

func serialsN(n int) []string {
	serials := make([]string, 0, n)
	for i := 0; i < n; i++ {
		serials = append(serials, fmt.Sprintf("SER%08d", i))
	}
	return serials
}

func TestRunEmptyInputIsNoOp(t *testing.T) {
	store := &recordingStore{}
	o := &Orchestrator{Fetcher: &stubFetcher{}, Cache: NewResultCache(), Store: store}

	summary := o.Run(context.Background(), nil)
	require.Equal(t, 0, summary.Total)
	require.Zero(t, store.saves)
	require.Empty(t, store.puts)
}

func TestRunCompletesAllAndStoresSuccesses(t *testing.T) {
	serials := serialsN(25)
	store := &recordingStore{}
	sink := &recordingSink{}
	o := &Orchestrator{
		Fetcher:            &stubFetcher{},
		Cache:              NewResultCache(),
		Store:              store,
		Sink:               sink,
		Concurrency:        8,
		CheckpointInterval: 100,
	}

	summary := o.Run(context.Background(), serials)
	require.Equal(t, 25, summary.Total)
	require.Equal(t, 25, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.Len(t, store.puts, 25)
	require.Len(t, sink.results, 25)
	require.NotEmpty(t, summary.RunID)
	// Final unconditional save only: 25 completions never hit interval 100.
	require.Equal(t, 1, store.saves)
}

func TestRunProgressReachesTotalExactlyOnce(t *testing.T) {
	serials := serialsN(40)
	sink := &recordingSink{}
	o := &Orchestrator{
		Fetcher:     &stubFetcher{},
		Cache:       NewResultCache(),
		Store:       &recordingStore{},
		Sink:        sink,
		Concurrency: 16,
	}

	o.Run(context.Background(), serials)

	require.Len(t, sink.progress, 40)
	reachedTotal := 0
	for i, p := range sink.progress {
		// Strictly increasing by one, regardless of completion order.
		require.Equal(t, i+1, p[0])
		require.Equal(t, 40, p[1])
		if p[0] == p[1] {
			reachedTotal++
		}
	}
	require.Equal(t, 1, reachedTotal)
}

func TestRunCacheHitSkipsNetwork(t *testing.T) {
	cache := NewResultCache()
	cached := successFor("AAAA1111", 1, 1)
	cache.Record(cached)

	fetcher := &stubFetcher{}
	sink := &recordingSink{}
	o := &Orchestrator{
		Fetcher: fetcher,
		Cache:   cache,
		Store:   &recordingStore{},
		Sink:    sink,
	}

	summary := o.Run(context.Background(), []string{"AAAA1111"})
	require.Zero(t, atomic.LoadInt32(&fetcher.calls))
	require.Equal(t, 1, summary.FromCache)
	require.Equal(t, 1, summary.Succeeded)
	// The cached result is emitted identically, retries untouched.
	require.Len(t, sink.results, 1)
	require.Same(t, cached, sink.results[0])
	require.Zero(t, sink.results[0].RetryCount)
}

func TestRunRecordsSuccessesInCache(t *testing.T) {
	cache := NewResultCache()
	fetcher := &stubFetcher{}
	o := &Orchestrator{Fetcher: fetcher, Cache: cache, Store: &recordingStore{}}

	o.Run(context.Background(), []string{"AAAA1111", "BBBB2222"})
	require.Equal(t, 2, cache.Len())

	// A second run over the same serials is answered from cache.
	summary := o.Run(context.Background(), []string{"AAAA1111", "BBBB2222"})
	require.Equal(t, int32(2), atomic.LoadInt32(&fetcher.calls))
	require.Equal(t, 2, summary.FromCache)
}

func TestRunCollectsFailedSubsetInSubmissionOrder(t *testing.T) {
	fetcher := &stubFetcher{
		fetch: func(serial string, sequence, total int, call int32) *core.QueryResult {
			if strings.HasPrefix(serial, "BAD") {
				return core.NewFailureResult(serial, sequence, total, "timeout", 2, core.Provenance{})
			}
			return successFor(serial, sequence, total)
		},
	}
	store := &recordingStore{}
	o := &Orchestrator{
		Fetcher:     fetcher,
		Cache:       NewResultCache(),
		Store:       store,
		Concurrency: 4,
	}

	summary := o.Run(context.Background(), []string{"GOOD1111", "BAD22222", "GOOD3333", "BAD44444"})
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 2, summary.Failed)
	require.Equal(t, []string{"BAD22222", "BAD44444"}, summary.FailedSerials)
	// Failures never reach the store.
	require.Len(t, store.puts, 2)
}

func TestRunDuplicateSerialLastCompletionWins(t *testing.T) {
	fetcher := &stubFetcher{
		fetch: func(serial string, sequence, total int, call int32) *core.QueryResult {
			if call == 1 {
				return core.NewFailureResult(serial, sequence, total, "flaky", 2, core.Provenance{})
			}
			return successFor(serial, sequence, total)
		},
	}
	store := &recordingStore{}
	sink := &recordingSink{}
	o := &Orchestrator{
		Fetcher:     fetcher,
		Cache:       NewResultCache(),
		Store:       store,
		Sink:        sink,
		Concurrency: 1,
	}

	// Post-normalization duplicates should not happen, but are tolerated.
	summary := o.Run(context.Background(), []string{"AAAA1111", "AAAA1111"})
	require.Len(t, sink.results, 2)
	require.Equal(t, 1, summary.Succeeded)
	require.Empty(t, summary.FailedSerials)

	latest := store.latest("AAAA1111")
	require.NotNil(t, latest)
	require.True(t, latest.Success())
}

func TestRunCheckpointsAtIntervalAndAtEnd(t *testing.T) {
	serials := serialsN(250)
	store := &recordingStore{}
	o := &Orchestrator{
		Fetcher:            &stubFetcher{},
		Cache:              NewResultCache(),
		Store:              store,
		Concurrency:        32,
		CheckpointInterval: 100,
	}

	o.Run(context.Background(), serials)
	// Two interleaved checkpoints plus the unconditional final save.
	require.Equal(t, 3, store.saves)
}

func TestRunSaveFailureDoesNotAbortBatch(t *testing.T) {
	store := &recordingStore{saveErr: errors.New("disk full")}
	o := &Orchestrator{
		Fetcher:            &stubFetcher{},
		Cache:              NewResultCache(),
		Store:              store,
		CheckpointInterval: 2,
	}

	summary := o.Run(context.Background(), serialsN(5))
	require.Equal(t, 5, summary.Succeeded)
	// Two interval checkpoints failed plus the final save.
	require.Equal(t, 3, summary.CheckpointErrors)
	require.Len(t, store.puts, 5)
}
