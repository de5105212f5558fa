package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/agents"
	"github.com/issuelet/issuelet/pkg/presenter"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Inspect agent definitions",
	Long:  `List and show the markdown agent definitions available to this workspace.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agent definitions",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		processor, err := agents.NewAgentProcessor()
		if err != nil {
			presenter.Error(err, "Failed to initialize agent processor")
			os.Exit(1)
		}

		list, err := processor.ListAgents(ctx)
		if err != nil {
			presenter.Error(err, "Failed to list agents")
			os.Exit(1)
		}

		if len(list) == 0 {
			presenter.Info("No agent definitions available")
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMODEL\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t-----\t-----------")

		for _, agent := range list {
			model := agent.Metadata.Model
			if model == "" {
				model = "-"
			}
			description := agent.Metadata.Description
			if len(description) > 60 {
				description = description[:57] + "..."
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", agent.Metadata.Name, model, description)
		}
		tw.Flush()
	},
}

var agentShowCmd = &cobra.Command{
	Use:   "show <agent-name>",
	Short: "Show an agent definition",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		processor, err := agents.NewAgentProcessor()
		if err != nil {
			presenter.Error(err, "Failed to initialize agent processor")
			os.Exit(1)
		}

		agent, err := processor.LoadAgent(ctx, args[0])
		if err != nil {
			presenter.Error(err, "Agent not found")
			os.Exit(1)
		}

		presenter.Section(agent.Metadata.Name)
		presenter.Info("Path:        " + agent.Path)
		presenter.Info("Description: " + agent.Metadata.Description)
		if agent.Metadata.Model != "" {
			presenter.Info("Model:       " + agent.Metadata.Model)
		}
		if len(agent.Metadata.AllowedTools) > 0 {
			presenter.Info("Tools:       " + strings.Join(agent.Metadata.AllowedTools, ", "))
		}
		if len(agent.Metadata.AllowedCommands) > 0 {
			presenter.Info("Commands:    " + strings.Join(agent.Metadata.AllowedCommands, ", "))
		}
		presenter.Separator()
		fmt.Println(agent.SystemPrompt)
	},
}

func init() {
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentShowCmd)
}
