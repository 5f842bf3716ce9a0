package core

import "context"

// SourceControl is the GitLab-facing collaborator. Calls return transient
// errors (wrapped via Transient) when retrying could help, permanent errors
// otherwise.
type SourceControl interface {
	// FetchChangedFiles returns the merge request's current change set.
	FetchChangedFiles(ctx context.Context, projectID, mrIID int64) ([]FileChange, error)

	// PostDiscussion creates a new discussion thread on the merge request
	// for filePath and returns its external id.
	PostDiscussion(ctx context.Context, projectID, mrIID int64, filePath, content string) (string, error)

	// UpdateDiscussion appends content to an existing discussion thread.
	UpdateDiscussion(ctx context.Context, projectID, mrIID int64, discussionID, content string) error

	// ResolveDiscussion marks a discussion thread resolved.
	ResolveDiscussion(ctx context.Context, projectID, mrIID int64, discussionID string) error

	// ApproveMergeRequest issues the bot's approval.
	ApproveMergeRequest(ctx context.Context, projectID, mrIID int64) error
}

// Notifier delivers operator-facing notifications. Calls are fire-and-forget:
// failures are logged by the caller, never propagated.
type Notifier interface {
	NotifyFileLimitExceeded(ctx context.Context, projectID, mrIID int64, fileCount int) error
}

// Completion is a raw LLM response plus its token accounting.
type Completion struct {
	Text       string
	TokensUsed int
}

// Completer is the LLM collaborator. Implementations classify failures:
// transport, rate-limit and empty-response errors come back wrapped as
// transient so the evaluator's attempt loop can retry them.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)

	// Model identifies the configured model for audit records.
	Model() string
}

// JobDispatcher accepts normalized events and queues them for background
// processing, decoupling webhook ingestion from evaluation throughput.
type JobDispatcher interface {
	// Dispatch queues an event. It returns an error when the queue is
	// full, giving the transport layer backpressure.
	Dispatch(ctx context.Context, event *MergeRequestEvent) error

	// Stop drains the queue and waits for in-flight jobs to finish.
	Stop()
}

// Job is a single executable unit of work triggered by a merge request
// event.
type Job interface {
	Run(ctx context.Context, event *MergeRequestEvent) error
}
