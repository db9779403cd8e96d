package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.csv")

	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// temp 파일이 남지 않아야 함
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.csv")
	require.NoError(t, WriteFile(path, []byte("keep")))

	// 대상 경로가 디렉터리면 rename 실패
	target := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0755))
	assert.Error(t, WriteFile(target, []byte("x")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	err := WriteCSV(path, []string{"Ticker", "Rule"}, [][]string{
		{"ABC", "RSI2<=5 & Close>MA200"},
		{"XYZ", "a, b"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Ticker,Rule\nABC,RSI2<=5 & Close>MA200\nXYZ,\"a, b\"\n", string(data))
}
