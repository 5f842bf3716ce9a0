package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/storage"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/wire"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [project-id] [mr-iid]",
	Short: "Shows the review state and per-file verdicts of a merge request",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q: %w", args[0], err)
		}
		mrIID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid merge request iid %q: %w", args[1], err)
		}

		app, cleanup, err := wire.InitializeApp()
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		review, err := app.Store.GetReview(ctx, projectID, mrIID)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("No review found for project %d, merge request !%d\n", projectID, mrIID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve review: %w", err)
		}

		verdicts, err := app.Store.ListFileVerdicts(ctx, review.ID)
		if err != nil {
			return fmt.Errorf("failed to retrieve file verdicts: %w", err)
		}
		tokens, err := app.Store.SumTokens(ctx, review.ID)
		if err != nil {
			return fmt.Errorf("failed to total token usage: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(struct {
				Review     *core.Review       `json:"review"`
				Files      []core.FileVerdict `json:"files"`
				TokensUsed int64              `json:"tokens_used"`
			}{review, verdicts, tokens})
		}

		fmt.Printf("Review #%d  project %d  !%d  status=%s  updated=%s\n",
			review.ID, review.ProjectID, review.MergeRequestIID,
			review.Status, review.UpdatedAt.Format(time.RFC822))
		fmt.Printf("Tokens used: %d\n\n", tokens)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FILE\tCHANGE\tPROCESSED\tVERDICT")
		for _, fv := range verdicts {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
				fv.FilePath,
				fv.ChangeType,
				fv.Processed,
				fv.Verdict,
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
