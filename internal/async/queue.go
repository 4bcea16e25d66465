package async

import (
	"context"
	"time"
)

// Job is one control file waiting to be imported.
type Job struct {
	Path        string
	FileName    string
	HashHex     string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
