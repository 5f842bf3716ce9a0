package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/render"
)

func newTestBinder(t *testing.T) (*Binder, *memStore, *fakeSCM) {
	t.Helper()
	renderer, err := render.New("en")
	require.NoError(t, err)

	store := newMemStore()
	scm := newFakeSCM()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewBinder(store, scm, renderer, staticCompleter{}, logger), store, scm
}

func seedReviewAndVerdict(t *testing.T, store *memStore, path string) (*core.Review, *core.FileVerdict) {
	t.Helper()
	review, err := store.UpsertReview(context.Background(), 1, 7)
	require.NoError(t, err)
	fv, err := store.UpsertFileVerdict(context.Background(), &core.FileVerdict{
		ReviewID: review.ID,
		FilePath: path,
	})
	require.NoError(t, err)
	return review, fv
}

func TestBinderPublishCreatesThread(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	verdict := core.Verdict{Approved: false, Score: 4, Issues: []string{"bug"}, Summary: "broken"}
	require.NoError(t, b.Publish(context.Background(), review, fv, verdict))

	assert.Len(t, scm.posted, 1)
	d := store.discussionFor(t, "a.go")
	assert.Equal(t, "disc-1", d.ExternalID)
	assert.False(t, d.Resolved)
	assert.Contains(t, scm.posted["disc-1"], "a.go")
}

func TestBinderPublishApprovedResolvesThread(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: true, Score: 9}))

	d := store.discussionFor(t, "a.go")
	assert.True(t, d.Resolved)
	assert.Equal(t, 1, scm.resolved[d.ExternalID])
}

func TestBinderPublishResubmissionUpdatesThread(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 3}))
	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 5}))

	// Still a single thread, appended to rather than duplicated.
	assert.Len(t, scm.posted, 1)
	d := store.discussionFor(t, "a.go")
	assert.Equal(t, 1, scm.updated[d.ExternalID])
}

func TestBinderPublishApprovalAfterRejectionResolves(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 3}))
	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: true, Score: 9}))

	d := store.discussionFor(t, "a.go")
	assert.True(t, d.Resolved)
	assert.Equal(t, 1, scm.resolved[d.ExternalID])
}

func TestBinderPublishRecreatesVanishedThread(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 3}))

	// The external thread is gone: updating it fails permanently, so a
	// fresh thread is created and rebound.
	scm.updateErr = errors.New("404 discussion not found")
	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 4}))

	d := store.discussionFor(t, "a.go")
	assert.Equal(t, "disc-2", d.ExternalID)
}

func TestBinderPublishTransientUpdateFailurePropagates(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 3}))

	scm.updateErr = core.Transient(errors.New("503 service unavailable"))
	err := b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 4})
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))

	// No rebinding happened.
	d := store.discussionFor(t, "a.go")
	assert.Equal(t, "disc-1", d.ExternalID)
}

func TestBinderPublishUnavailable(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	require.NoError(t, b.PublishUnavailable(context.Background(), review, fv))

	d := store.discussionFor(t, "a.go")
	assert.False(t, d.Resolved)
	assert.Contains(t, scm.posted[d.ExternalID], "a.go")
}

func TestBinderWithdraw(t *testing.T) {
	b, store, scm := newTestBinder(t)
	review, fv := seedReviewAndVerdict(t, store, "a.go")

	// No thread yet: nothing to withdraw.
	assert.False(t, b.Withdraw(context.Background(), review, fv))

	require.NoError(t, b.Publish(context.Background(), review, fv, core.Verdict{Approved: false, Score: 3}))
	assert.True(t, b.Withdraw(context.Background(), review, fv))

	d := store.discussionFor(t, "a.go")
	assert.True(t, d.Resolved)
	assert.Equal(t, 1, scm.resolved[d.ExternalID])

	// Already resolved: withdrawing again reports no change.
	assert.False(t, b.Withdraw(context.Background(), review, fv))
}
