// Package storage persists reviews, per-file verdicts, discussion bindings
// and the LLM audit trail. The unique constraints on reviews and
// file_verdicts are the durable correctness guarantee against concurrent
// delivery; the in-memory locks in the jobs package are only an
// optimization on top.
package storage

import (
	"context"
	"errors"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store defines all database operations the engine issues.
type Store interface {
	// UpsertReview finds or creates the review for (projectID, mrIID),
	// relying on the unique constraint as tiebreaker under concurrent
	// delivery. A fresh review starts pending.
	UpsertReview(ctx context.Context, projectID, mrIID int64) (*core.Review, error)

	// GetReview returns the review for (projectID, mrIID) or ErrNotFound.
	GetReview(ctx context.Context, projectID, mrIID int64) (*core.Review, error)

	// UpdateReviewStatus transitions the review's aggregate status.
	UpdateReviewStatus(ctx context.Context, reviewID int64, status core.ReviewStatus) error

	// UpsertFileVerdict inserts the verdict row for (ReviewID, FilePath)
	// or, when the fingerprint changed, resets the existing row to
	// pending/unprocessed with the new fingerprint. An unchanged
	// fingerprint leaves processed state intact. The returned row reflects
	// the stored state.
	UpsertFileVerdict(ctx context.Context, fv *core.FileVerdict) (*core.FileVerdict, error)

	// CompleteFileVerdict marks a file processed with its terminal state.
	CompleteFileVerdict(ctx context.Context, fileVerdictID int64, verdict core.VerdictState) error

	// ListFileVerdicts returns all verdict rows of a review.
	ListFileVerdicts(ctx context.Context, reviewID int64) ([]core.FileVerdict, error)

	// GetDiscussion returns the thread binding for (reviewID, filePath) or
	// ErrNotFound.
	GetDiscussion(ctx context.Context, reviewID int64, filePath string) (*core.Discussion, error)

	// SaveDiscussion upserts the thread binding keyed by
	// (reviewID, filePath).
	SaveDiscussion(ctx context.Context, d *core.Discussion) error

	// MarkDiscussionResolved flips the stored resolved flag.
	MarkDiscussionResolved(ctx context.Context, discussionID int64) error

	// AppendLLMMessage appends one audit row. Rows are never mutated.
	AppendLLMMessage(ctx context.Context, m *core.LLMMessage) error

	// SumTokens totals tokens_used across all messages of a review.
	SumTokens(ctx context.Context, reviewID int64) (int64, error)

	// Tx runs fn against a store bound to one transaction. Cross-entity
	// writes that must observe each other (final verdict write plus
	// aggregate status update) go through here.
	Tx(ctx context.Context, fn func(Store) error) error
}
