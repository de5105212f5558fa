package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/presenter"
)

type ShowConfig struct {
	Problem bool
}

func NewShowConfig() *ShowConfig {
	return &ShowConfig{
		Problem: false,
	}
}

var showCmd = &cobra.Command{
	Use:   "show <issue-name>",
	Short: "Show one issue's status, stage, and artifacts",
	Long: `Show an issue's status marker, its lifecycle stage (derived from which
artifact files exist), and the artifact files present. The issues root is
searched first, then the archive root.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		showConfig := getShowConfigFromFlags(cmd)
		store := getStore(getConfig())

		issue, err := store.Get(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Issue not found")
			os.Exit(1)
		}

		location := "active"
		if issue.Archived {
			location = "archived"
		}

		presenter.Section(issue.Name)
		presenter.Info(fmt.Sprintf("Location:  %s (%s)", issue.Path, location))
		presenter.Info(fmt.Sprintf("Status:    %s", issue.Status))
		presenter.Info(fmt.Sprintf("Stage:     %s", issue.Stage()))
		presenter.Info("Artifacts:")
		for _, artifact := range issue.Artifacts {
			presenter.Info("  " + artifact)
		}

		if showConfig.Problem {
			problem, err := issue.Problem()
			if err != nil {
				presenter.Error(err, "Failed to read problem.md")
				os.Exit(1)
			}
			presenter.Separator()
			fmt.Print(problem)
		}
	},
}

func init() {
	defaults := NewShowConfig()
	showCmd.Flags().BoolP("problem", "p", defaults.Problem, "Also print the content of problem.md")
}

func getShowConfigFromFlags(cmd *cobra.Command) *ShowConfig {
	config := NewShowConfig()
	if problem, err := cmd.Flags().GetBool("problem"); err == nil {
		config.Problem = problem
	}
	return config
}
