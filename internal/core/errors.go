package core

import "errors"

// Failure taxonomy for event processing. Per-file failures never abort a
// batch; per-review failures abort the event and rely on redelivery, since
// every operation is idempotent.
var (
	// ErrMalformedInput marks events or files that can never succeed:
	// missing identity fields, unsupported file types. Logged and skipped,
	// never retried.
	ErrMalformedInput = errors.New("malformed input")

	// ErrCapacityExceeded marks a change set over the file ceiling. The
	// whole review short-circuits with a notification and stays pending
	// for manual action.
	ErrCapacityExceeded = errors.New("file limit exceeded")

	// ErrEvaluationUnavailable marks an evaluation whose retries are
	// exhausted. The file verdict stays pending so a later event can
	// retry; it is a service error, not a code-quality rejection.
	ErrEvaluationUnavailable = errors.New("review service unavailable")

	// ErrReviewCancelled marks processing observed after the merge request
	// was closed or merged. In-flight work drains with no side effects.
	ErrReviewCancelled = errors.New("review cancelled")
)

// TransientError wraps a failure that is worth retrying: timeouts, 5xx,
// rate limits, connection errors, and malformed LLM output within the
// attempt budget.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is a retryable external failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
