package core

import "time"

// ReviewStatus is the aggregate state of a merge request review.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewCompleted ReviewStatus = "completed"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewCancelled ReviewStatus = "cancelled"
)

// Terminal reports whether the status ends normal processing. Completed and
// rejected reviews can still be re-opened by a new diff; cancelled cannot.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewCompleted || s == ReviewRejected || s == ReviewCancelled
}

// ChangeType classifies how a file changed within a merge request.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

// VerdictState is the per-file review outcome.
type VerdictState string

const (
	VerdictPending  VerdictState = "pending"
	VerdictApproved VerdictState = "approved"
	VerdictRejected VerdictState = "rejected"
	VerdictSkipped  VerdictState = "skipped"
)

// Review is the per-merge-request record tracking overall evaluation
// progress. At most one non-cancelled row exists per (project, iid); a
// resubmission reuses the row.
type Review struct {
	ID              int64        `db:"id"`
	ProjectID       int64        `db:"project_id"`
	MergeRequestIID int64        `db:"merge_request_iid"`
	Status          ReviewStatus `db:"status"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}

// FileVerdict is one file's durable review state within a Review. The
// fingerprint detects resubmissions that did not actually change the file;
// a changed fingerprint resets the row to pending.
type FileVerdict struct {
	ID              int64        `db:"id"`
	ReviewID        int64        `db:"review_id"`
	FilePath        string       `db:"file_path"`
	ChangeType      ChangeType   `db:"change_type"`
	DiffFingerprint string       `db:"diff_fingerprint"`
	Processed       bool         `db:"processed"`
	Verdict         VerdictState `db:"verdict"`
}

// Discussion binds a FileVerdict to the external comment thread carrying
// its rendered verdict. The thread itself is owned by GitLab; only the id
// is durable here, and the engine tolerates the thread disappearing.
type Discussion struct {
	ID         int64  `db:"id"`
	ReviewID   int64  `db:"review_id"`
	FilePath   string `db:"file_path"`
	ExternalID string `db:"external_id"`
	Resolved   bool   `db:"resolved"`
}

// Message roles for the LLM audit trail.
const (
	MessageSystem    = "system"
	MessageUser      = "user"
	MessageAssistant = "assistant"
)

// LLMMessage is one append-only audit row for a prompt or response
// exchanged while evaluating a file. Rows are written before any retry so
// the trail is complete even for failed attempts.
type LLMMessage struct {
	ID            int64     `db:"id"`
	FileVerdictID int64     `db:"file_verdict_id"`
	MessageType   string    `db:"message_type"`
	Content       string    `db:"content"`
	TokensUsed    int       `db:"tokens_used"`
	CreatedAt     time.Time `db:"created_at"`
}

// Verdict is the structured result the LLM returns for one file.
type Verdict struct {
	Approved    bool     `json:"approved"`
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
}

// State maps the boolean verdict onto the FileVerdict state machine.
func (v Verdict) State() VerdictState {
	if v.Approved {
		return VerdictApproved
	}
	return VerdictRejected
}

// AggregateStatus computes the review-level decision from the current file
// verdicts. It is pure and total: decided is false while any file is still
// pending, so no partial aggregate decision is ever issued. An empty set is
// vacuously completed. Completed requires every verdict to be approved or
// skipped; any rejection makes the whole review rejected.
func AggregateStatus(verdicts []FileVerdict) (status ReviewStatus, decided bool) {
	for _, fv := range verdicts {
		switch fv.Verdict {
		case VerdictPending:
			return ReviewPending, false
		case VerdictRejected:
			status = ReviewRejected
		}
	}
	if status == ReviewRejected {
		return ReviewRejected, true
	}
	return ReviewCompleted, true
}
