package sequence

import (
	"sort"

	tomb "gopkg.in/tomb.v2"
)

// FileResult is one file's independent scan outcome: its own per-product
// SeqRanges and any Skipped/NewProduct events raised while scanning it.
type FileResult struct {
	Path   string
	Ranges map[string]SeqRange
	Events []Event
	Err    error
}

// defaultPoolSize bounds how many files are gzip-decompressed at once,
// adapted from saiputravu-Exchange/internal/worker.go's WorkerPool: a
// fixed-size pool of tomb-supervised goroutines pulling tasks off a
// channel, here scanning one archive file per task instead of handling one
// TCP connection per task.
const defaultPoolSize = 8

// ScanFiles processes every path in paths in parallel (bounded by
// defaultPoolSize workers) and returns one FileResult per path, in the
// same order as paths. Each file gets its own Checker, since per-file
// state must stay independent for the later cross-file join (§5: "files
// may be processed in parallel; per-file state is independent").
func ScanFiles(paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	type task struct {
		index int
		path  string
	}
	tasks := make(chan task, len(paths))
	for i, p := range paths {
		tasks <- task{index: i, path: p}
	}
	close(tasks)

	var t tomb.Tomb
	n := defaultPoolSize
	if n > len(paths) {
		n = len(paths)
	}
	for i := 0; i < n; i++ {
		t.Go(func() error {
			for {
				select {
				case <-t.Dying():
					return nil
				case tk, ok := <-tasks:
					if !ok {
						return nil
					}
					checker := NewChecker()
					events, err := ScanFile(tk.path, checker)
					results[tk.index] = FileResult{
						Path:   tk.path,
						Ranges: checker.Ranges(),
						Events: events,
						Err:    err,
					}
				}
			}
		})
	}
	t.Wait()
	return results
}

// GapReport is a cross-file gap found by Join: the product was seen in
// both files, but the first file's last sequence number and the second
// file's first sequence number are not contiguous.
type GapReport struct {
	FileBefore string
	FileAfter  string
	ProductID  string
	EndSeq     uint64
	BeginSeq   uint64
}

// Join compares consecutive files (sorted lexicographically ascending,
// which matches the archive's time ordering per §5) and reports a gap for
// every product present in both whose ranges are not contiguous across the
// file boundary. Products present only on one side of the boundary are not
// gaps — they are a new or terminated product for that pair and are
// omitted from the report.
func Join(results []FileResult) []GapReport {
	sorted := make([]FileResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var gaps []GapReport
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		for product, prevRange := range prev.Ranges {
			curRange, ok := cur.Ranges[product]
			if !ok {
				continue
			}
			if prevRange.End+1 != curRange.Begin {
				gaps = append(gaps, GapReport{
					FileBefore: prev.Path,
					FileAfter:  cur.Path,
					ProductID:  product,
					EndSeq:     prevRange.End,
					BeginSeq:   curRange.Begin,
				})
			}
		}
	}
	return gaps
}
