package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warrantylens/warrantylens/internal/core"
)

func TestStreamSinkResultLines(t *testing.T) {
	var out bytes.Buffer
	sink := &streamSink{out: &out}

	payload := &core.WarrantyPayload{
		StatusCode: 200,
		Data: core.WarrantyDetail{
			DetailInfo: map[string][]core.ServiceEntry{
				"warranty": {{DateDifference: 10}, {DateDifference: -3}},
			},
		},
	}
	sink.OnResult(core.NewSuccessResult("AAAA1111", 2, 5, payload, 0, core.Provenance{}))
	sink.OnResult(core.NewFailureResult("BBBB2222", 4, 5, "context deadline exceeded", 2, core.Provenance{}))

	require.Contains(t, out.String(), "AAAA1111 (2/5): ok, 1 valid / 1 expired service(s)")
	require.Contains(t, out.String(), "BBBB2222 (4/5): FAILED after 2 retries: context deadline exceeded")
}

func TestStreamSinkProgressStep(t *testing.T) {
	var out bytes.Buffer
	sink := &streamSink{out: &out}

	for i := 1; i <= 25; i++ {
		sink.OnProgress(i, 25)
	}

	require.Contains(t, out.String(), "progress: 20/25")
	require.Contains(t, out.String(), "progress: 25/25")
	require.NotContains(t, out.String(), "progress: 19/25")
}

func TestWriteRetryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retry.txt")
	require.NoError(t, writeRetryFile(path, []string{"AAAA1111", "BBBB2222"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "AAAA1111\nBBBB2222\n", string(data))
}
