package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSerialsFromArgs(t *testing.T) {
	var warnings bytes.Buffer

	serials, err := resolveSerials([]string{"abcd1234", "EFGH5678"}, "", &warnings)
	require.NoError(t, err)
	require.Equal(t, []string{"ABCD1234", "EFGH5678"}, serials)
	require.Empty(t, warnings.String())
}

func TestResolveSerialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serials.txt")
	require.NoError(t, os.WriteFile(path, []byte("AAAA1111\nBBBB2222, CCCC3333\n"), 0o644))

	var warnings bytes.Buffer
	serials, err := resolveSerials(nil, path, &warnings)
	require.NoError(t, err)
	require.Equal(t, []string{"AAAA1111", "BBBB2222", "CCCC3333"}, serials)
}

func TestResolveSerialsReportsInvalidAndDuplicates(t *testing.T) {
	var warnings bytes.Buffer

	serials, err := resolveSerials([]string{"ABCDEFGH", "ABCDEFGH", "short"}, "", &warnings)
	require.NoError(t, err)
	require.Equal(t, []string{"ABCDEFGH"}, serials)
	require.Contains(t, warnings.String(), "1 invalid serial(s): short")
	require.Contains(t, warnings.String(), "1 duplicate serial(s): ABCDEFGH")
}

func TestResolveSerialsRejectsMixedSources(t *testing.T) {
	var warnings bytes.Buffer
	_, err := resolveSerials([]string{"ABCDEFGH"}, "some/file", &warnings)
	require.Error(t, err)
}

func TestResolveSerialsNoValidInput(t *testing.T) {
	var warnings bytes.Buffer
	_, err := resolveSerials([]string{"!!"}, "", &warnings)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no valid serials")
}
