package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

// dispatcher implements core.JobDispatcher with a bounded worker pool, so
// webhook ingestion can absorb bursts while evaluation throughput stays
// capped.
type dispatcher struct {
	reviewJob  core.Job
	jobQueue   chan *core.MergeRequestEvent
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher starts a worker pool of maxWorkers goroutines (minimum 1).
func NewDispatcher(reviewJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		reviewJob:  reviewJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.MergeRequestEvent, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

func (d *dispatcher) processEvent(workerID int, event *core.MergeRequestEvent) {
	d.logger.Info("worker processing event",
		"worker_id", workerID,
		"project", event.ProjectID,
		"mr", event.MergeRequestIID,
		"action", event.Action,
	)

	if err := d.reviewJob.Run(context.Background(), event); err != nil {
		d.logger.Error("review job failed",
			"project", event.ProjectID,
			"mr", event.MergeRequestIID,
			"error", err,
		)
	}
}

// Dispatch queues an event, returning an error when the queue is full so
// the transport layer can signal backpressure.
func (d *dispatcher) Dispatch(_ context.Context, event *core.MergeRequestEvent) error {
	d.logger.Info("queuing review event", "project", event.ProjectID, "mr", event.MergeRequestIID)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review event")
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
