package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/wire"
)

var verbose bool

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [project-id] [mr-iid]",
	Short: "Run an LLM review for a GitLab merge request",
	Long: `Run an LLM review for a GitLab merge request.

The review command fetches the merge request's change set, evaluates each
supported file with the configured LLM, and posts the verdicts as
discussion threads on the merge request.

Examples:
  review-cli review 42 7
  review-cli review --verbose 42 7`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	projectID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid project id %q: %w", args[0], err)
	}
	mrIID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid merge request iid %q: %w", args[1], err)
	}

	titleColor.Println("Merge Request Review")
	dimColor.Printf("   Target: project %d, merge request !%d\n\n", projectID, mrIID)

	appInstance, cleanup, err := wire.InitializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w\n\nTip: Check that your .env exists and is valid", err)
	}
	defer cleanup()

	event := &core.MergeRequestEvent{
		ProjectID:       projectID,
		MergeRequestIID: mrIID,
		Action:          core.ActionUpdate,
	}

	start := time.Now()
	fmt.Println("Running review...")
	if err := appInstance.Job.Run(ctx, event); err != nil {
		return fmt.Errorf("review failed: %w", err)
	}
	if verbose {
		dimColor.Printf("   Total time: %s\n", time.Since(start).Round(time.Millisecond))
	}

	review, err := appInstance.Store.GetReview(ctx, projectID, mrIID)
	if err != nil {
		return fmt.Errorf("failed to load review result: %w", err)
	}

	switch review.Status {
	case core.ReviewCompleted:
		successColor.Printf("Review completed: all files passed, merge request approved\n")
	case core.ReviewRejected:
		errorColor.Printf("Review rejected: at least one file has outstanding issues\n")
	default:
		warnColor.Printf("Review is %s: see 'review-cli status %d %d' for per-file detail\n",
			review.Status, projectID, mrIID)
	}
	return nil
}
