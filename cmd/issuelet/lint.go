package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate the issue store",
	Long: `Check every directory under the issues root against the store
conventions: kebab-case names, a problem.md marker file, a recognized
Status: value, and no stray markdown files outside the fixed artifact set.
All findings are reported at once.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		store := getStore(getConfig())

		if err := store.Lint(ctx); err != nil {
			presenter.Error(err, "Issue store has problems")
			os.Exit(1)
		}

		presenter.Success("Issue store is clean")
	},
}
