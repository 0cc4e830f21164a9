// Command parse loads a single gzipped book-snapshot file and debug-prints
// the decoded object, mirroring original_source/src/bin/parse.rs.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ouroboros/internal/snapshot"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: parse <file>")
		os.Exit(1)
	}

	snap, err := snapshot.Load(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Str("file", os.Args[1]).Msg("failed to parse snapshot")
	}

	log.Info().
		Uint64("sequence", snap.Sequence).
		Int("bids", len(snap.Bids)).
		Int("asks", len(snap.Asks)).
		Msg("parsed snapshot")
	fmt.Printf("%+v\n", snap)
}
