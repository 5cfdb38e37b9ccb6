package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warrantylens/warrantylens/internal/core"
)

func TestResultCacheRecordsOnlySuccesses(t *testing.T) {
	cache := NewResultCache()

	success := core.NewSuccessResult("AAAA1111", 1, 2, &core.WarrantyPayload{StatusCode: 200}, 0, core.Provenance{})
	failure := core.NewFailureResult("BBBB2222", 2, 2, "timeout", 2, core.Provenance{})

	cache.Record(success)
	cache.Record(failure)

	require.Same(t, success, cache.Lookup("AAAA1111"))
	require.Nil(t, cache.Lookup("BBBB2222"))
	require.Equal(t, 1, cache.Len())
}

func TestResultCacheOverwrites(t *testing.T) {
	cache := NewResultCache()

	first := core.NewSuccessResult("AAAA1111", 1, 1, &core.WarrantyPayload{StatusCode: 200}, 0, core.Provenance{})
	second := core.NewSuccessResult("AAAA1111", 1, 1, &core.WarrantyPayload{StatusCode: 200}, 1, core.Provenance{})

	cache.Record(first)
	cache.Record(second)

	require.Same(t, second, cache.Lookup("AAAA1111"))
	require.Equal(t, 1, cache.Len())
}
