package main

import (
	"os"

	"github.com/spf13/cobra"
)

var gitlabToken string

var rootCmd = &cobra.Command{
	Use:   "review-cli",
	Short: "review-cli is the command-line interface for the review service.",
	Long:  `A CLI for driving and inspecting merge request reviews out of band, without going through the webhook endpoint.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if gitlabToken != "" {
			return os.Setenv("GITLAB_TOKEN", gitlabToken)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&gitlabToken, "gitlab-token", "t", "", "GitLab token (overrides GITLAB_TOKEN)")
}
