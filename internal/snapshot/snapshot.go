// Package snapshot decodes the gzipped JSON book snapshots that
// ChunkLocator resolves paths for. A snapshot is a starting point for a
// replay: a sequence number plus the bid/ask rows standing at that point.
package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"

	"ouroboros/internal/book"
	"ouroboros/internal/price"
)

// Snapshot is the decoded contents of one book-snapshot file:
// data/PPP-PPP_YYYYMMDD_HHMMSS.json.gz, shaped
// {sequence, bids: [[price, size, order_id], …], asks: […]}.
type Snapshot struct {
	Sequence uint64
	Bids     []Row
	Asks     []Row
}

// Row is one resting order at the moment the snapshot was taken.
type Row struct {
	Price   price.Price
	Size    price.Price
	OrderID string
}

// wireSnapshot mirrors the archive's on-disk shape: each row is a
// three-element [price, size, order_id] string triple.
type wireSnapshot struct {
	Sequence uint64     `json:"sequence"`
	Bids     [][]string `json:"bids"`
	Asks     [][]string `json:"asks"`
}

// Load gzip-decompresses and JSON-decodes the snapshot at path, parsing
// every row's price and size through internal/price.Parse.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: gunzip %s: %w", path, err)
	}
	defer gz.Close()

	var wire wireSnapshot
	if err := json.NewDecoder(gz).Decode(&wire); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}

	bids, err := parseRows(wire.Bids)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: bids: %w", path, err)
	}
	asks, err := parseRows(wire.Asks)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: asks: %w", path, err)
	}

	return &Snapshot{Sequence: wire.Sequence, Bids: bids, Asks: asks}, nil
}

func parseRows(raw [][]string) ([]Row, error) {
	rows := make([]Row, 0, len(raw))
	for i, fields := range raw {
		if len(fields) != 3 {
			return nil, fmt.Errorf("row %d: expected 3 fields, got %d", i, len(fields))
		}
		px, err := price.Parse(fields[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: price: %w", i, err)
		}
		size, err := price.Parse(fields[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: size: %w", i, err)
		}
		rows = append(rows, Row{Price: px, Size: size, OrderID: fields[2]})
	}
	return rows, nil
}

// Rows returns the snapshot's rows for side (Bid or Ask).
func (s *Snapshot) Rows(side book.Side) []Row {
	if side == book.Bid {
		return s.Bids
	}
	return s.Asks
}
