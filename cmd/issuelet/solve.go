package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/issues"
	"github.com/issuelet/issuelet/pkg/presenter"
	"github.com/issuelet/issuelet/pkg/runner"
)

type SolveConfig struct {
	Agent  string
	Match  string
	Args   []string
	DryRun bool
}

func NewSolveConfig() *SolveConfig {
	return &SolveConfig{
		Agent:  "",
		Match:  "",
		Args:   []string{},
		DryRun: false,
	}
}

var solveUnsolvedCmd = &cobra.Command{
	Use:   "solve-unsolved [workflow-name]",
	Short: "Run the external agent against every unsolved open issue",
	Long: `Iterate the open issues whose status is OPEN and that have no solution.md
yet, render the workflow template for each (default "solve"), and run the
external agent CLI on it. A failing run is reported and does not stop the
remaining issues from being attempted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		solveConfig := getSolveConfigFromFlags(cmd)

		workflow := "solve"
		if len(args) == 1 {
			workflow = args[0]
		}

		cfg := getConfig()
		store := getStore(cfg)

		open, err := store.ListOpen(ctx)
		if err != nil {
			presenter.Error(err, "Failed to list issues")
			os.Exit(1)
		}

		open, err = issues.Filter(open, solveConfig.Match)
		if err != nil {
			presenter.Error(err, "Invalid match pattern")
			os.Exit(1)
		}

		var unsolved []*issues.Issue
		for _, issue := range open {
			if issue.Status == issues.StatusOpen && !issue.Solved() {
				unsolved = append(unsolved, issue)
			}
		}

		if len(unsolved) == 0 {
			presenter.Info("No unsolved open issues")
			return
		}

		if solveConfig.DryRun {
			presenter.Info(fmt.Sprintf("Would run workflow '%s' on %d issue(s):", workflow, len(unsolved)))
			for _, issue := range unsolved {
				presenter.Info("  " + issue.Name)
			}
			return
		}

		r, err := runner.NewRunner(runner.WithAgentConfig(cfg.Agent))
		if err != nil {
			presenter.Error(err, "Failed to initialize agent runner")
			os.Exit(1)
		}

		failed := 0
		for _, issue := range unsolved {
			presenter.Section(issue.Name)

			req, err := buildRunRequest(cmd, issue, workflow, solveConfig.Agent, solveConfig.Args)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to prepare run for issue '%s'", issue.Name))
				failed++
				continue
			}

			if err := r.Run(ctx, req); err != nil {
				presenter.Error(err, fmt.Sprintf("Agent failed on issue '%s'", issue.Name))
				failed++
				continue
			}

			presenter.Success(fmt.Sprintf("Finished issue '%s'", issue.Name))
		}

		presenter.Separator()
		if failed > 0 {
			presenter.Warning(fmt.Sprintf("Attempted %d issue(s), %d failed", len(unsolved), failed))
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Attempted %d issue(s), all succeeded", len(unsolved)))
	},
}

func init() {
	defaults := NewSolveConfig()
	solveUnsolvedCmd.Flags().StringP("agent", "a", defaults.Agent, "Agent definition to use for the runs")
	solveUnsolvedCmd.Flags().StringP("match", "m", defaults.Match, "Only solve issues whose name matches this glob pattern")
	solveUnsolvedCmd.Flags().StringArray("arg", defaults.Args, "Additional template arguments as key=value pairs")
	solveUnsolvedCmd.Flags().Bool("dry-run", defaults.DryRun, "List the issues that would be attempted without running the agent")
}

func getSolveConfigFromFlags(cmd *cobra.Command) *SolveConfig {
	config := NewSolveConfig()
	if agent, err := cmd.Flags().GetString("agent"); err == nil {
		config.Agent = agent
	}
	if match, err := cmd.Flags().GetString("match"); err == nil {
		config.Match = match
	}
	if args, err := cmd.Flags().GetStringArray("arg"); err == nil {
		config.Args = args
	}
	if dryRun, err := cmd.Flags().GetBool("dry-run"); err == nil {
		config.DryRun = dryRun
	}
	return config
}
