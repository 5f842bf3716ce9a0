// Package core defines the domain types and collaborator interfaces the
// review engine is built around. Implementations live in their own packages
// so the orchestration logic stays decoupled from GitLab, the LLM provider,
// and the database.
package core

import "fmt"

// MergeRequestAction is the normalized webhook action for a merge request.
type MergeRequestAction string

const (
	ActionOpen   MergeRequestAction = "open"
	ActionUpdate MergeRequestAction = "update"
	ActionReopen MergeRequestAction = "reopen"
	ActionClose  MergeRequestAction = "close"
	ActionMerge  MergeRequestAction = "merge"
)

// TriggersReview reports whether the action starts or resumes evaluation.
// Close and merge cancel instead; anything else is acknowledged and ignored.
func (a MergeRequestAction) TriggersReview() bool {
	return a == ActionOpen || a == ActionUpdate || a == ActionReopen
}

// Cancels reports whether the action forecloses further evaluation.
func (a MergeRequestAction) Cancels() bool {
	return a == ActionClose || a == ActionMerge
}

// FileChange is one changed file in a merge request's current change set.
type FileChange struct {
	Path       string
	OldPath    string
	ChangeType ChangeType
	Diff       string
}

// MergeRequestEvent is the normalized, internal view of a GitLab merge
// request webhook event. The webhook handler acts as an anti-corruption
// layer: by the time an event reaches the orchestrator it carries a stable
// merge request identity and the full current change set.
type MergeRequestEvent struct {
	ProjectID       int64
	MergeRequestIID int64
	Action          MergeRequestAction
	Files           []FileChange
}

// Key returns the dedup key for per-merge-request serialization.
func (e *MergeRequestEvent) Key() string {
	return fmt.Sprintf("%d/%d", e.ProjectID, e.MergeRequestIID)
}

// Validate ensures the event carries the identity fields every downstream
// component relies on.
func (e *MergeRequestEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", ErrMalformedInput)
	}
	if e.ProjectID <= 0 {
		return fmt.Errorf("%w: project id must be positive, got %d", ErrMalformedInput, e.ProjectID)
	}
	if e.MergeRequestIID <= 0 {
		return fmt.Errorf("%w: merge request iid must be positive, got %d", ErrMalformedInput, e.MergeRequestIID)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action is empty", ErrMalformedInput)
	}
	return nil
}
