package importer

import (
	"context"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/textextract"
)

// TextExtractor turns a document on disk into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (textextract.Result, error)
}

// Archiver keeps a copy of the source file. Failures are never fatal.
type Archiver interface {
	Archive(ctx context.Context, runID, path string) (string, error)
}

// Notifier reports a finished run. Failures are never fatal.
type Notifier interface {
	NotifyRun(ctx context.Context, run *entity.ImportRun, report *Report) error
}
