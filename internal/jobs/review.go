package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
)

// Evaluator produces a verdict for one file change.
type Evaluator interface {
	Evaluate(ctx context.Context, fileVerdictID int64, change core.FileChange) (core.Verdict, error)
}

// ReviewJob is the orchestrator: it deduplicates and serializes processing
// per merge request, drives each file through evaluation, keeps discussion
// threads in sync, and aggregates file verdicts into the review-level
// decision.
type ReviewJob struct {
	store       storage.Store
	scm         core.SourceControl
	notifier    core.Notifier
	evaluator   Evaluator
	binder      *Binder
	locks       *KeyMutex
	canceller   *Canceller
	maxFiles    int
	concurrency int
	logger      *slog.Logger
}

// NewReviewJob wires the orchestrator.
func NewReviewJob(cfg *config.Config, store storage.Store, scm core.SourceControl, notifier core.Notifier, evaluator Evaluator, binder *Binder, logger *slog.Logger) *ReviewJob {
	if store == nil {
		panic("store cannot be nil")
	}
	if scm == nil {
		panic("source control client cannot be nil")
	}
	if evaluator == nil {
		panic("evaluator cannot be nil")
	}
	return &ReviewJob{
		store:       store,
		scm:         scm,
		notifier:    notifier,
		evaluator:   evaluator,
		binder:      binder,
		locks:       NewKeyMutex(),
		canceller:   NewCanceller(),
		maxFiles:    cfg.MaxFilesPerReview,
		concurrency: cfg.FileConcurrency,
		logger:      logger,
	}
}

// task pairs a durable verdict row with the incoming change it represents.
type task struct {
	fv     *core.FileVerdict
	change core.FileChange
}

// Run processes one normalized merge request event end to end. Per-file
// failures never abort the batch; a review-level failure returns an error
// and relies on redelivery, since every operation here is idempotent.
func (j *ReviewJob) Run(ctx context.Context, event *core.MergeRequestEvent) error {
	if err := event.Validate(); err != nil {
		j.logger.Warn("ignoring malformed event", "error", err)
		return err
	}

	key := event.Key()

	if event.Action.Cancels() {
		return j.cancelReview(ctx, event, key)
	}
	if !event.Action.TriggersReview() {
		j.logger.Info("ignoring merge request action", "action", event.Action, "key", key)
		return nil
	}

	// Serialize per merge request; other merge requests proceed in
	// parallel. Everything below, network calls included, runs under the
	// key lock.
	unlock := j.locks.Lock(key)
	defer unlock()

	ctx, stop := j.canceller.Track(ctx, key)
	defer stop()

	review, err := j.store.UpsertReview(ctx, event.ProjectID, event.MergeRequestIID)
	if err != nil {
		return err
	}
	if review.Status == core.ReviewCancelled {
		j.logger.Info("review is cancelled, ignoring event", "key", key)
		return nil
	}
	prevStatus := review.Status

	files := event.Files
	if files == nil {
		if files, err = j.scm.FetchChangedFiles(ctx, event.ProjectID, event.MergeRequestIID); err != nil {
			return err
		}
	}

	plan, err := j.planFiles(ctx, review, files)
	if err != nil {
		return err
	}

	withdrew, err := j.withdrawRemoved(ctx, review, plan)
	if err != nil {
		return err
	}

	if !withdrew && prevStatus.Terminal() && allProcessed(plan) {
		// Pure duplicate delivery: the change set fingerprints all match
		// rows we already processed and nothing was withdrawn. Zero side
		// effects.
		j.logger.Info("merge request already reviewed, ignoring duplicate event", "key", key, "status", prevStatus)
		return nil
	}

	pending := pendingTasks(plan)
	if len(pending) > j.maxFiles {
		return j.shortCircuitFileLimit(ctx, event, review, prevStatus, len(pending))
	}

	j.evaluatePending(ctx, review, pending)

	if ctx.Err() != nil {
		j.logger.Info("review cancelled, discarding in-flight results", "key", key)
		return nil
	}

	return j.finalize(ctx, event, review, prevStatus)
}

// planFiles filters the change set down to reviewable files and upserts
// their verdict rows. Unsupported types and no-op renames are acknowledged,
// not errors, and leave no row behind.
func (j *ReviewJob) planFiles(ctx context.Context, review *core.Review, files []core.FileChange) ([]task, error) {
	var plan []task
	for _, change := range files {
		if !core.SupportedFile(change.Path) {
			j.logger.Debug("skipping unsupported file", "file", change.Path)
			continue
		}
		if change.NoOp() {
			j.logger.Debug("skipping rename without content change", "file", change.Path)
			continue
		}

		fv, err := j.store.UpsertFileVerdict(ctx, &core.FileVerdict{
			ReviewID:        review.ID,
			FilePath:        change.Path,
			ChangeType:      change.ChangeType,
			DiffFingerprint: change.Fingerprint(),
		})
		if err != nil {
			return nil, err
		}
		plan = append(plan, task{fv: fv, change: change})
	}
	return plan, nil
}

func allProcessed(plan []task) bool {
	for _, t := range plan {
		if !t.fv.Processed {
			return false
		}
	}
	return true
}

func pendingTasks(plan []task) []task {
	var pending []task
	for _, t := range plan {
		if !t.fv.Processed {
			pending = append(pending, t)
		}
	}
	return pending
}

// shortCircuitFileLimit handles an oversized change set: one notification,
// zero evaluations, review left pending for manual action. Partial
// evaluation is explicitly disallowed.
func (j *ReviewJob) shortCircuitFileLimit(ctx context.Context, event *core.MergeRequestEvent, review *core.Review, prevStatus core.ReviewStatus, fileCount int) error {
	j.logger.Warn("change set exceeds file limit, skipping evaluation",
		"key", event.Key(), "files", fileCount, "limit", j.maxFiles)

	if err := j.notifier.NotifyFileLimitExceeded(ctx, event.ProjectID, event.MergeRequestIID, fileCount); err != nil {
		j.logger.Error("failed to send file limit notification", "key", event.Key(), "error", err)
	}

	if prevStatus != core.ReviewPending {
		return j.store.UpdateReviewStatus(ctx, review.ID, core.ReviewPending)
	}
	return nil
}

// withdrawRemoved resolves threads of files no longer present in the diff.
// Verdicts already reached are kept; rows still pending are marked skipped
// so they cannot block aggregation forever. It reports whether any state
// actually changed, so a redelivery with nothing left to withdraw still
// counts as a duplicate.
func (j *ReviewJob) withdrawRemoved(ctx context.Context, review *core.Review, plan []task) (bool, error) {
	current := make(map[string]struct{}, len(plan))
	for _, t := range plan {
		current[t.fv.FilePath] = struct{}{}
	}

	stored, err := j.store.ListFileVerdicts(ctx, review.ID)
	if err != nil {
		return false, err
	}
	var changed bool
	for i := range stored {
		fv := &stored[i]
		if _, ok := current[fv.FilePath]; ok {
			continue
		}
		if !fv.Processed {
			if err := j.store.CompleteFileVerdict(ctx, fv.ID, core.VerdictSkipped); err != nil {
				return changed, err
			}
			changed = true
		}
		if j.binder.Withdraw(ctx, review, fv) {
			changed = true
		}
	}
	return changed, nil
}

// evaluatePending fans the pending files out with bounded concurrency.
// Files are independent; each goroutine owns all writes to its verdict row.
func (j *ReviewJob) evaluatePending(ctx context.Context, review *core.Review, pending []task) {
	g := new(errgroup.Group)
	g.SetLimit(j.concurrency)

	for _, t := range pending {
		g.Go(func() error {
			j.evaluateFile(ctx, review, t)
			return nil
		})
	}
	_ = g.Wait()
}

// evaluateFile runs one file through the evaluator and publishes the
// outcome. Failures are recorded against this file only.
func (j *ReviewJob) evaluateFile(ctx context.Context, review *core.Review, t task) {
	if ctx.Err() != nil {
		return
	}

	verdict, err := j.evaluator.Evaluate(ctx, t.fv.ID, t.change)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled mid-flight: drain without side effects.
			return
		}
		j.logger.Error("file evaluation failed", "file", t.fv.FilePath, "error", err)
		if errors.Is(err, core.ErrEvaluationUnavailable) {
			// Verdict stays pending for a future retry, but the reviewer
			// still gets an explanation on the thread.
			if berr := j.binder.PublishUnavailable(ctx, review, t.fv); berr != nil {
				j.logger.Error("failed to publish unavailability notice", "file", t.fv.FilePath, "error", berr)
			}
		}
		return
	}

	if err := j.store.CompleteFileVerdict(ctx, t.fv.ID, verdict.State()); err != nil {
		j.logger.Error("failed to persist file verdict", "file", t.fv.FilePath, "error", err)
		return
	}
	t.fv.Processed = true
	t.fv.Verdict = verdict.State()

	if err := j.binder.Publish(ctx, review, t.fv, verdict); err != nil {
		// Thread state degrades observability, not correctness: the
		// verdict above is already durable.
		j.logger.Error("failed to publish discussion", "file", t.fv.FilePath, "error", err)
	}

	j.logger.Info("file reviewed",
		"file", t.fv.FilePath, "approved", verdict.Approved, "score", verdict.Score)
}

// finalize recomputes the aggregate decision inside one transaction with
// the stored verdicts and approves the merge request exactly once per
// transition into completed.
func (j *ReviewJob) finalize(ctx context.Context, event *core.MergeRequestEvent, review *core.Review, prevStatus core.ReviewStatus) error {
	var final core.ReviewStatus
	var decided bool

	err := j.store.Tx(ctx, func(s storage.Store) error {
		verdicts, err := s.ListFileVerdicts(ctx, review.ID)
		if err != nil {
			return err
		}
		final, decided = core.AggregateStatus(verdicts)
		if !decided {
			// Some file is still pending (evaluation unavailable); no
			// aggregate decision is issued.
			if prevStatus != core.ReviewPending {
				return s.UpdateReviewStatus(ctx, review.ID, core.ReviewPending)
			}
			return nil
		}
		return s.UpdateReviewStatus(ctx, review.ID, final)
	})
	if err != nil {
		return fmt.Errorf("finalize review %s: %w", event.Key(), err)
	}

	if !decided {
		j.logger.Info("review left pending, some files unavailable", "key", event.Key())
		return nil
	}

	j.logger.Info("review finalized", "key", event.Key(), "status", final)

	if final == core.ReviewCompleted && prevStatus != core.ReviewCompleted {
		if err := j.scm.ApproveMergeRequest(ctx, event.ProjectID, event.MergeRequestIID); err != nil {
			return fmt.Errorf("approve merge request %s: %w", event.Key(), err)
		}
		j.logger.Info("merge request approved", "key", event.Key())
	}
	return nil
}

// cancelReview handles close/merge: stop in-flight evaluation for the key,
// then mark the review cancelled. Cancelled is terminal.
func (j *ReviewJob) cancelReview(ctx context.Context, event *core.MergeRequestEvent, key string) error {
	j.canceller.Cancel(key)

	unlock := j.locks.Lock(key)
	defer unlock()

	review, err := j.store.GetReview(ctx, event.ProjectID, event.MergeRequestIID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if review.Status == core.ReviewCancelled {
		return nil
	}

	j.logger.Info("cancelling review", "key", key, "reason", event.Action)
	return j.store.UpdateReviewStatus(ctx, review.ID, core.ReviewCancelled)
}
