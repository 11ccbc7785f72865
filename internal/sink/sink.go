// Package sink writes CSV snapshots of the ledger to an external target.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cashflow/internal/csvio"
)

// Sink receives full ledger snapshots encoded as CSV documents.
type Sink interface {
	Write(ctx context.Context, doc csvio.Document) error
}

// FileSink writes the snapshot to a single CSV file, atomically via a
// temp-file rename.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Write(_ context.Context, doc csvio.Document) error {
	if dir := filepath.Dir(s.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".cashflow-*.csv")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := csvio.Encode(tmp, doc.Transactions, doc.Opening, doc.Start, doc.End); err != nil {
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
