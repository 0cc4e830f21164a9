package historical

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
}

func TestChunkPath(t *testing.T) {
	l := New("data")
	got := l.ChunkPath(time.Date(2018, 2, 25, 17, 30, 0, 0, time.UTC))
	assert.Equal(t, filepath.Join("data", "ws_20180225_170000.txt.gz"), got)
}

func TestSnapshotIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"BTC-USD_20180225_170132.json.gz",
		"BTC-USD_20180225_170017.json.gz",
		"BTC-USD_20170225_170000.json.gz",
		"BTC-EUR_20180225_170000.json.gz",
	} {
		touch(t, dir, name)
	}
	l := New(dir)

	index, err := l.SnapshotIndex(time.Date(2018, 2, 25, 17, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"BTC-USD": filepath.Join(dir, "BTC-USD_20180225_170017.json.gz"),
		"BTC-EUR": filepath.Join(dir, "BTC-EUR_20180225_170000.json.gz"),
	}, index)

	index, err = l.SnapshotIndex(time.Date(2017, 2, 25, 17, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"BTC-USD": filepath.Join(dir, "BTC-USD_20170225_170000.json.gz"),
	}, index)

	index, err = l.SnapshotIndex(time.Date(2017, 2, 25, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, index)
}

func TestOpenChunkMissingFile(t *testing.T) {
	l := New(t.TempDir())
	_, err := l.OpenChunk(time.Date(2018, 2, 25, 17, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestOpenChunkStreamsLines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	ts := time.Date(2018, 2, 25, 17, 0, 0, 0, time.UTC)

	f, err := os.Create(l.ChunkPath(ts))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	for _, line := range []string{`{"sequence":1}`, `{"sequence":2}`} {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	stream, err := l.OpenChunk(ts)
	require.NoError(t, err)
	defer stream.Close()

	var lines []string
	for {
		line, ok := stream.Next()
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{`{"sequence":1}`, `{"sequence":2}`}, lines)
}
