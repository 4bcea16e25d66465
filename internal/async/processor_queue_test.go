package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/importer"
)

type fakeProcessor struct {
	mu    sync.Mutex
	paths []string
	fail  string
}

func (f *fakeProcessor) ProcessFile(_ context.Context, path, _ string) (*importer.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if path == f.fail {
		return nil, errors.New("boom")
	}
	return &importer.Report{RunID: "run-" + path, Success: true}, nil
}

func TestProcessorQueue_ProcessesAllJobs(t *testing.T) {
	proc := &fakeProcessor{fail: "b.pdf"}
	var (
		mu   sync.Mutex
		errs int
	)
	q := NewProcessorQueue(proc, nil,
		WithWorkers(3),
		WithQueueSize(1),
		WithOnDone(func(_ Job, _ *importer.Report, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs++
			}
		}),
	)

	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"}, proc.paths)
	assert.Equal(t, 1, errs)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
