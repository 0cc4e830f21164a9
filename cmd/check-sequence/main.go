// Command check-sequence reads one or more gzipped, newline-delimited JSON
// archive files and reports sequence-number gaps, per-file and across
// files. It mirrors original_source/src/bin/check_sequence.rs: exit code 0
// regardless of whether gaps were found, since gaps are informational.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ouroboros/internal/sequence"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	files := os.Args[1:]
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-sequence <file>...")
		os.Exit(1)
	}

	results := sequence.ScanFiles(files)
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Path).Msg("scan failed")
			continue
		}
		for _, ev := range r.Events {
			fmt.Printf("%s: %s\n", r.Path, ev.String())
		}
	}

	for _, gap := range sequence.Join(results) {
		fmt.Printf("Gap detected between files %s and %s on %s: end seq %d, begin seq %d\n",
			gap.FileBefore, gap.FileAfter, gap.ProductID, gap.EndSeq, gap.BeginSeq)
	}
}
