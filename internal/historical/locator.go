// Package historical locates the archived chunk and snapshot files that
// cover a requested wall-clock start time, and opens a chunk as a lazy
// stream of lines. It does not itself decode feed messages or snapshots —
// that is internal/book and internal/snapshot's job.
package historical

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrBadPattern is returned when the derived glob pattern itself is
// malformed — a fatal configuration error per §7, distinct from the
// per-entry I/O errors that SnapshotIndex merely logs and skips.
var ErrBadPattern = errors.New("historical: malformed glob pattern")

// ChunkLocator resolves archive file paths under a root data directory.
// Dir defaults to "data", matching the archive layout in spec.md §6.
type ChunkLocator struct {
	Dir string

	// OnGlobError, if set, is called when a matched snapshot filename is
	// too short to carry a product prefix; that entry is skipped. File
	// system errors (such as an unreadable directory) are ignored by
	// filepath.Glob and are not reported here. It is never called for a
	// malformed glob pattern, which is fatal and returned directly from
	// SnapshotIndex.
	OnGlobError func(err error)
}

// New returns a ChunkLocator rooted at dir.
func New(dir string) *ChunkLocator {
	return &ChunkLocator{Dir: dir}
}

func (l *ChunkLocator) dir() string {
	if l.Dir == "" {
		return "data"
	}
	return l.Dir
}

// ChunkPath returns the filename of the hourly websocket chunk covering t,
// derived from t's UTC components: data/ws_YYYYMMDD_HH0000.txt.gz.
func (l *ChunkLocator) ChunkPath(t time.Time) string {
	t = t.UTC()
	return filepath.Join(l.dir(), fmt.Sprintf("ws_%s0000.txt.gz", t.Format("20060102_15")))
}

// OpenChunk opens the chunk covering t and returns a LineStream over its
// decompressed contents. The stream is lazy, pull-driven, and not
// restartable; on decompression or I/O error Next returns false and Err
// returns that error.
func (l *ChunkLocator) OpenChunk(t time.Time) (*LineStream, error) {
	path := l.ChunkPath(t)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("historical: open %s: %w", path, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("historical: gunzip %s: %w", path, err)
	}
	return &LineStream{file: f, gz: gz, scanner: bufio.NewScanner(gz)}, nil
}

// LineStream yields the lines of one chunk file in archive order, one pull
// at a time.
type LineStream struct {
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	err     error
}

// Next returns the next line and true, or ("", false) once the stream is
// exhausted or has failed. Call Err after Next returns false to find out
// which.
func (s *LineStream) Next() (string, bool) {
	if s.err != nil {
		return "", false
	}
	if !s.scanner.Scan() {
		s.err = s.scanner.Err()
		return "", false
	}
	return s.scanner.Text(), true
}

// Err returns the I/O or decompression error that terminated the stream,
// if any.
func (s *LineStream) Err() error { return s.err }

// Close releases the underlying file and gzip reader. Safe to call after
// the stream is exhausted.
func (s *LineStream) Close() error {
	gzErr := s.gz.Close()
	fileErr := s.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// snapshotPattern derives the glob pattern for book-snapshot files covering
// the UTC hour of t: data/PPP-PPP_YYYYMMDD_HH????.json.gz (a seven
// character product prefix, any minute/second within the hour).
func (l *ChunkLocator) snapshotPattern(t time.Time) string {
	t = t.UTC()
	return filepath.Join(l.dir(), fmt.Sprintf("???-???_%s????.json.gz", t.Format("20060102_15")))
}

// productPrefixLen is the width of "PPP-PPP" in a snapshot filename.
const productPrefixLen = 7

// SnapshotIndex enumerates snapshot files covering t's UTC hour, buckets
// them by product (the first seven characters of the filename), and keeps
// the lexicographically smallest filename per product (the earliest
// minute/second within the hour). A filename too short for a product
// prefix is reported via OnGlobError and skipped; file system errors are
// ignored by filepath.Glob and are neither reported nor returned. A
// malformed glob pattern is fatal and returned as ErrBadPattern.
func (l *ChunkLocator) SnapshotIndex(t time.Time) (map[string]string, error) {
	pattern := l.snapshotPattern(t)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPattern, pattern, err)
	}

	best := make(map[string]string)
	for _, match := range matches {
		name := filepath.Base(match)
		if len(name) < productPrefixLen {
			if l.OnGlobError != nil {
				l.OnGlobError(fmt.Errorf("historical: snapshot filename too short: %s", name))
			}
			continue
		}
		product := name[:productPrefixLen]
		existing, ok := best[product]
		if !ok || filepath.Base(match) < filepath.Base(existing) {
			best[product] = match
		}
	}
	return best, nil
}

var _ io.Closer = (*LineStream)(nil)
