package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/presenter"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <issue-name>",
	Short: "Move an issue from the issues root to the archive",
	Long: `Move one issue directory, with everything in it, from the issues root to
the archive root. The archive root is created if it does not exist yet. When
the archive already holds an issue of the same name, the moved directory gets
a YYYYMMDD-HHMMSS timestamp suffix and the existing entry is left untouched.

Archiving is not idempotent: once an issue has been moved, archiving the same
name again fails because it no longer exists under the issues root.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store := getStore(getConfig())

		dest, err := store.Archive(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Failed to archive issue")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Archived issue '%s' to %s", args[0], dest))
	},
}
