package ingest

import (
	"context"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath   string
	HashHex      string
	Deduplicated bool   // already imported by a completed run
	PreviousRun  string // that run's ID
	Queued       bool
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Queued       uint32
	Deduplicated uint32
	Failed       uint32
}

// RunLookup finds an earlier completed run of the same content.
type RunLookup interface {
	FindCompletedByHash(ctx context.Context, hash string) (*entity.ImportRun, error)
}

// Ingestor is the behavior the drop-folder service depends on.
type Ingestor interface {
	IngestPath(ctx context.Context, path string, force bool) (Result, error)
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error)
}

var _ Ingestor = (*FSIngestor)(nil)

