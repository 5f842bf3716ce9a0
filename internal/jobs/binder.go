package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/render"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
)

// Binder manages the external discussion thread behind each file verdict:
// one thread per (review, file), created on first publish, appended to on
// resubmission, resolved when the verdict flips to approved or the file is
// withdrawn from the diff. Thread failures degrade observability, never
// verdict correctness, so the orchestrator treats binder errors as
// non-fatal.
type Binder struct {
	store    storage.Store
	scm      core.SourceControl
	renderer *render.Renderer
	model    string
	logger   *slog.Logger
}

// NewBinder wires the discussion binder.
func NewBinder(store storage.Store, scm core.SourceControl, renderer *render.Renderer, completer core.Completer, logger *slog.Logger) *Binder {
	return &Binder{
		store:    store,
		scm:      scm,
		renderer: renderer,
		model:    completer.Model(),
		logger:   logger,
	}
}

// Publish posts the verdict to the file's thread, creating it on first
// contact and appending on resubmission. An approved verdict resolves the
// thread best-effort.
func (b *Binder) Publish(ctx context.Context, review *core.Review, fv *core.FileVerdict, verdict core.Verdict) error {
	content, err := b.renderer.Discussion(render.DiscussionData{
		FilePath: fv.FilePath,
		Verdict:  verdict,
		Model:    b.model,
	})
	if err != nil {
		return err
	}

	d, err := b.publish(ctx, review, fv, content)
	if err != nil {
		return err
	}

	if verdict.Approved {
		b.resolve(ctx, review, d)
	}
	return nil
}

// PublishUnavailable posts the service-unavailable notice so a stalled
// review is never left unexplained. The verdict stays pending.
func (b *Binder) PublishUnavailable(ctx context.Context, review *core.Review, fv *core.FileVerdict) error {
	content, err := b.renderer.Unavailable(fv.FilePath)
	if err != nil {
		return err
	}
	_, err = b.publish(ctx, review, fv, content)
	return err
}

// Withdraw resolves the thread of a file that disappeared from the diff,
// leaving the stored verdict untouched. It reports whether a resolution was
// actually attempted.
func (b *Binder) Withdraw(ctx context.Context, review *core.Review, fv *core.FileVerdict) bool {
	d, err := b.store.GetDiscussion(ctx, fv.ReviewID, fv.FilePath)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.logger.Error("failed to load discussion for withdrawn file", "file", fv.FilePath, "error", err)
		}
		return false
	}
	if d.Resolved {
		return false
	}
	b.resolve(ctx, review, d)
	return true
}

// publish creates or updates the thread and returns its binding. When the
// external thread vanished (a permanent update failure), a fresh thread is
// created and rebound rather than failing the publish.
func (b *Binder) publish(ctx context.Context, review *core.Review, fv *core.FileVerdict, content string) (*core.Discussion, error) {
	d, err := b.store.GetDiscussion(ctx, fv.ReviewID, fv.FilePath)
	switch {
	case err == nil:
		uerr := b.scm.UpdateDiscussion(ctx, review.ProjectID, review.MergeRequestIID, d.ExternalID, content)
		if uerr == nil {
			// A new note re-opens the conversation.
			d.Resolved = false
			if serr := b.store.SaveDiscussion(ctx, d); serr != nil {
				b.logger.Error("failed to persist discussion state", "file", fv.FilePath, "error", serr)
			}
			return d, nil
		}
		if core.IsTransient(uerr) {
			return nil, uerr
		}
		b.logger.Warn("discussion thread unreachable, recreating",
			"file", fv.FilePath, "discussion", d.ExternalID, "error", uerr)
		fallthrough

	case errors.Is(err, storage.ErrNotFound):
		externalID, perr := b.scm.PostDiscussion(ctx, review.ProjectID, review.MergeRequestIID, fv.FilePath, content)
		if perr != nil {
			return nil, fmt.Errorf("post discussion for %q: %w", fv.FilePath, perr)
		}
		nd := &core.Discussion{
			ReviewID:   fv.ReviewID,
			FilePath:   fv.FilePath,
			ExternalID: externalID,
		}
		if serr := b.store.SaveDiscussion(ctx, nd); serr != nil {
			return nil, fmt.Errorf("save discussion binding for %q: %w", fv.FilePath, serr)
		}
		return nd, nil

	default:
		return nil, err
	}
}

// resolve marks the thread resolved, best-effort: the numeric verdict is
// already durable, so a resolution failure is only logged.
func (b *Binder) resolve(ctx context.Context, review *core.Review, d *core.Discussion) {
	if err := b.scm.ResolveDiscussion(ctx, review.ProjectID, review.MergeRequestIID, d.ExternalID); err != nil {
		b.logger.Error("failed to resolve discussion", "discussion", d.ExternalID, "error", err)
		return
	}
	if err := b.store.MarkDiscussionResolved(ctx, d.ID); err != nil {
		b.logger.Error("failed to persist resolved flag", "discussion", d.ExternalID, "error", err)
	}
}
