package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/agents"
	"github.com/issuelet/issuelet/pkg/fragments"
	"github.com/issuelet/issuelet/pkg/issues"
	"github.com/issuelet/issuelet/pkg/presenter"
	"github.com/issuelet/issuelet/pkg/runner"
)

type RefineConfig struct {
	Agent    string
	Workflow string
	Args     []string
}

func NewRefineConfig() *RefineConfig {
	return &RefineConfig{
		Agent:    "",
		Workflow: "refine",
		Args:     []string{},
	}
}

var refineCmd = &cobra.Command{
	Use:   "refine <issue-name>",
	Short: "Have the external agent rewrite an issue's problem.md",
	Long: `Delegate rewriting of an issue's problem.md to the external agent CLI.
The agent receives the rendered refine workflow prompt and overwrites the file
in place; afterwards a unified diff of the change is printed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		refineConfig := getRefineConfigFromFlags(cmd)
		cfg := getConfig()
		store := getStore(cfg)

		issue, err := store.Get(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Issue not found")
			os.Exit(1)
		}
		if issue.Archived {
			presenter.Error(errors.Errorf("issue '%s' is archived", issue.Name), "Cannot refine an archived issue")
			os.Exit(1)
		}

		req, err := buildRunRequest(cmd, issue, refineConfig.Workflow, refineConfig.Agent, refineConfig.Args)
		if err != nil {
			presenter.Error(err, "Failed to prepare agent run")
			os.Exit(1)
		}

		r, err := runner.NewRunner(runner.WithAgentConfig(cfg.Agent))
		if err != nil {
			presenter.Error(err, "Failed to initialize agent runner")
			os.Exit(1)
		}

		presenter.Info(fmt.Sprintf("Refining issue '%s'...", issue.Name))
		diff, err := r.RefineIssue(ctx, issue, req)
		if err != nil {
			presenter.Error(err, "Agent run failed")
			os.Exit(1)
		}

		if diff == "" {
			presenter.Warning("The agent left problem.md unchanged")
			return
		}

		presenter.Separator()
		fmt.Print(diff)
		presenter.Separator()
		presenter.Success(fmt.Sprintf("Refined issue '%s'", issue.Name))
	},
}

func init() {
	defaults := NewRefineConfig()
	refineCmd.Flags().StringP("agent", "a", defaults.Agent, "Agent definition to use for the run")
	refineCmd.Flags().StringP("workflow", "w", defaults.Workflow, "Workflow template to render")
	refineCmd.Flags().StringArray("arg", defaults.Args, "Additional template arguments as key=value pairs")
}

func getRefineConfigFromFlags(cmd *cobra.Command) *RefineConfig {
	config := NewRefineConfig()
	if agent, err := cmd.Flags().GetString("agent"); err == nil {
		config.Agent = agent
	}
	if workflow, err := cmd.Flags().GetString("workflow"); err == nil {
		config.Workflow = workflow
	}
	if args, err := cmd.Flags().GetStringArray("arg"); err == nil {
		config.Args = args
	}
	return config
}

// parseTemplateArgs turns repeated key=value flags into template arguments
func parseTemplateArgs(pairs []string) (map[string]string, error) {
	args := make(map[string]string)
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, errors.Errorf("invalid argument '%s', expected key=value", pair)
		}
		args[key] = value
	}
	return args, nil
}

// buildRunRequest renders the workflow template for an issue and attaches the
// optional agent definition's system prompt and model hint
func buildRunRequest(cmd *cobra.Command, issue *issues.Issue, workflow, agentName string, argPairs []string) (*runner.RunRequest, error) {
	ctx := cmd.Context()

	problem, err := issue.Problem()
	if err != nil {
		return nil, err
	}

	templateArgs, err := parseTemplateArgs(argPairs)
	if err != nil {
		return nil, err
	}
	templateArgs["name"] = issue.Name
	templateArgs["problem"] = problem
	templateArgs["problem_path"] = filepath.Join(issue.Path, issues.ProblemFile)
	templateArgs["issue_path"] = issue.Path

	fp, err := fragments.NewFragmentProcessor()
	if err != nil {
		return nil, err
	}

	prompt, err := fp.LoadFragment(ctx, &fragments.FragmentConfig{
		FragmentName: workflow,
		Arguments:    templateArgs,
	})
	if err != nil {
		return nil, err
	}

	req := &runner.RunRequest{Prompt: prompt}

	if agentName != "" {
		processor, err := agents.NewAgentProcessor()
		if err != nil {
			return nil, err
		}
		agent, err := processor.LoadAgent(ctx, agentName)
		if err != nil {
			return nil, err
		}
		req.SystemPrompt = agent.SystemPrompt
		req.Model = agent.Metadata.Model
	}

	return req, nil
}
