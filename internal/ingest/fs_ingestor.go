package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/async"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
)

// FSIngestor hands local PDFs to the import queue, skipping content that a
// completed run already imported.
type FSIngestor struct {
	Runs   RunLookup // nil disables dedupe
	Queue  async.Queue
	Logger *slog.Logger
}

func NewFSIngestor(runs RunLookup, queue async.Queue, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Runs: runs, Queue: queue, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string, force bool) (Result, error) {
	out := Result{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("%w: unsupported or missing extension %q", common.ErrInvalidInput, ext)
	}

	hash, err := importer.HashFile(abs)
	if err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}
	out.HashHex = hash

	if i.Runs != nil && !force {
		prev, err := i.Runs.FindCompletedByHash(ctx, hash)
		switch {
		case err == nil && prev != nil:
			out.Deduplicated = true
			out.PreviousRun = prev.ID
			i.Logger.Info("ingest.skip.duplicate", "path", abs, "previous_run", prev.ID)
			return out, nil
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return out, fmt.Errorf("dedupe lookup: %w", err)
		}
	}

	job := async.Job{Path: abs, FileName: filepath.Base(abs), HashHex: hash, TraceID: uuid.NewString()}
	if err := i.Queue.Enqueue(ctx, job); err != nil {
		return out, fmt.Errorf("enqueue: %w", err)
	}
	out.Queued = true
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and calls
// IngestPath for each PDF. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path, false)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		if r.Deduplicated {
			stats.Deduplicated++
		} else {
			stats.Queued++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.Logger.Info("ingest.dir.ok",
		"root", root,
		"matched", stats.Matched,
		"queued", stats.Queued,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// Watch feeds files reported by the watcher into IngestPath until ctx is done
// or the watcher stops.
func (i *FSIngestor) Watch(ctx context.Context, cfg WatchConfig) error {
	if cfg.Logger == nil {
		cfg.Logger = i.Logger
	}
	events, errs, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := i.IngestPath(ctx, path, false); err != nil {
				i.Logger.Warn("ingest.watch.failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				i.Logger.Warn("ingest.watch.error", "error", err)
			}
		}
	}
}
