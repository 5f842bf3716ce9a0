package jobs

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

type countingJob struct {
	mu   sync.Mutex
	runs int
}

func (j *countingJob) Run(_ context.Context, _ *core.MergeRequestEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return nil
}

func TestDispatcherRunsQueuedJobs(t *testing.T) {
	job := &countingJob{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	d := NewDispatcher(job, 3, logger)

	for i := range 10 {
		require.NoError(t, d.Dispatch(context.Background(), &core.MergeRequestEvent{
			ProjectID:       1,
			MergeRequestIID: int64(i + 1),
			Action:          core.ActionOpen,
		}))
	}

	// Stop drains the queue before returning.
	d.Stop()
	assert.Equal(t, 10, job.runs)
}
