package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/presenter"
)

var createCmd = &cobra.Command{
	Use:   "create <issue-name>",
	Short: "Create a new issue",
	Long: `Create a new issue directory under the issues root with a scaffolded
problem.md marked "Status: OPEN". Issue names must be kebab-case.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store := getStore(getConfig())

		issue, err := store.Create(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to create issue")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Created issue '%s' at %s", issue.Name, issue.Path))
	},
}
