// Package gitlab adapts the GitLab API to the engine's source-control and
// notification collaborator interfaces.
package gitlab

import (
	"context"
	"fmt"
	"log/slog"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/render"
)

// Client implements core.SourceControl and core.Notifier over the GitLab
// REST API.
type Client struct {
	gl       *gitlab.Client
	renderer *render.Renderer
	limit    int
	logger   *slog.Logger
}

// NewClient builds the API client from config.
func NewClient(cfg *config.Config, renderer *render.Renderer, logger *slog.Logger) (*Client, error) {
	gl, err := gitlab.NewClient(cfg.GitLabToken, gitlab.WithBaseURL(cfg.GitLabURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}
	return &Client{gl: gl, renderer: renderer, limit: cfg.MaxFilesPerReview, logger: logger}, nil
}

// FetchChangedFiles returns the merge request's current change set,
// following pagination.
func (c *Client) FetchChangedFiles(ctx context.Context, projectID, mrIID int64) ([]core.FileChange, error) {
	var out []core.FileChange
	opt := &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		diffs, resp, err := c.gl.MergeRequests.ListMergeRequestDiffs(projectID, int(mrIID), opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, classify(resp, fmt.Errorf("fetch changes for %d/%d: %w", projectID, mrIID, err))
		}
		for _, d := range diffs {
			out = append(out, fileChangeFromDiff(d))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

func fileChangeFromDiff(d *gitlab.MergeRequestDiff) core.FileChange {
	changeType := core.ChangeModified
	switch {
	case d.NewFile:
		changeType = core.ChangeAdded
	case d.DeletedFile:
		changeType = core.ChangeDeleted
	case d.RenamedFile:
		changeType = core.ChangeRenamed
	}
	path := d.NewPath
	if path == "" {
		path = d.OldPath
	}
	return core.FileChange{
		Path:       path,
		OldPath:    d.OldPath,
		ChangeType: changeType,
		Diff:       d.Diff,
	}
}

// PostDiscussion creates a new thread on the merge request and returns its
// external id.
func (c *Client) PostDiscussion(ctx context.Context, projectID, mrIID int64, filePath, content string) (string, error) {
	discussion, resp, err := c.gl.Discussions.CreateMergeRequestDiscussion(projectID, int(mrIID),
		&gitlab.CreateMergeRequestDiscussionOptions{Body: gitlab.Ptr(content)},
		gitlab.WithContext(ctx))
	if err != nil {
		return "", classify(resp, fmt.Errorf("create discussion for %q on %d/%d: %w", filePath, projectID, mrIID, err))
	}
	return discussion.ID, nil
}

// UpdateDiscussion appends a note to the existing thread instead of
// creating a second one; this keeps repeated deliveries idempotent.
func (c *Client) UpdateDiscussion(ctx context.Context, projectID, mrIID int64, discussionID, content string) error {
	_, resp, err := c.gl.Discussions.AddMergeRequestDiscussionNote(projectID, int(mrIID), discussionID,
		&gitlab.AddMergeRequestDiscussionNoteOptions{Body: gitlab.Ptr(content)},
		gitlab.WithContext(ctx))
	if err != nil {
		return classify(resp, fmt.Errorf("update discussion %s on %d/%d: %w", discussionID, projectID, mrIID, err))
	}
	return nil
}

// ResolveDiscussion marks the thread resolved.
func (c *Client) ResolveDiscussion(ctx context.Context, projectID, mrIID int64, discussionID string) error {
	_, resp, err := c.gl.Discussions.ResolveMergeRequestDiscussion(projectID, int(mrIID), discussionID,
		&gitlab.ResolveMergeRequestDiscussionOptions{Resolved: gitlab.Ptr(true)},
		gitlab.WithContext(ctx))
	if err != nil {
		return classify(resp, fmt.Errorf("resolve discussion %s on %d/%d: %w", discussionID, projectID, mrIID, err))
	}
	return nil
}

// ApproveMergeRequest issues the bot's approval. GitLab treats repeated
// approval by the same user as idempotent.
func (c *Client) ApproveMergeRequest(ctx context.Context, projectID, mrIID int64) error {
	_, resp, err := c.gl.MergeRequestApprovals.ApproveMergeRequest(projectID, int(mrIID),
		&gitlab.ApproveMergeRequestOptions{},
		gitlab.WithContext(ctx))
	if err != nil {
		return classify(resp, fmt.Errorf("approve merge request %d/%d: %w", projectID, mrIID, err))
	}
	return nil
}

// NotifyFileLimitExceeded posts the oversized-change-set notification as a
// plain discussion on the merge request.
func (c *Client) NotifyFileLimitExceeded(ctx context.Context, projectID, mrIID int64, fileCount int) error {
	body, err := c.renderer.FileLimit(fileCount, c.limit)
	if err != nil {
		return err
	}
	_, resp, err := c.gl.Discussions.CreateMergeRequestDiscussion(projectID, int(mrIID),
		&gitlab.CreateMergeRequestDiscussionOptions{Body: gitlab.Ptr(body)},
		gitlab.WithContext(ctx))
	if err != nil {
		return classify(resp, fmt.Errorf("notify file limit on %d/%d: %w", projectID, mrIID, err))
	}
	return nil
}

// classify wraps err as transient when the response indicates a retryable
// condition: rate limiting, server errors, or no response at all
// (connection failure, timeout).
func classify(resp *gitlab.Response, err error) error {
	if resp == nil {
		return core.Transient(err)
	}
	if resp.StatusCode == 429 || resp.StatusCode >= 500 {
		return core.Transient(err)
	}
	return err
}
