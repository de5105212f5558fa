package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/presenter"
	"github.com/issuelet/issuelet/pkg/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Inspect workspace skills",
	Long:  `List and show the SKILL.md skill directories available to this workspace.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available skills",
	Run: func(_ *cobra.Command, _ []string) {
		discovery, err := skills.NewDiscovery()
		if err != nil {
			presenter.Error(err, "Failed to initialize skill discovery")
			os.Exit(1)
		}

		allSkills, err := discovery.DiscoverSkills()
		if err != nil {
			presenter.Error(err, "Failed to discover skills")
			os.Exit(1)
		}

		if len(allSkills) == 0 {
			presenter.Info("No skills available")
			return
		}

		names := make([]string, 0, len(allSkills))
		for name := range allSkills {
			names = append(names, name)
		}
		sort.Strings(names)

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
		fmt.Fprintln(tw, "----\t---------\t-----------")

		for _, name := range names {
			skill := allSkills[name]
			description := skill.Description
			if len(description) > 60 {
				description = description[:57] + "..."
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, skill.Directory, description)
		}
		tw.Flush()
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Show a skill's metadata and instructions",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		discovery, err := skills.NewDiscovery()
		if err != nil {
			presenter.Error(err, "Failed to initialize skill discovery")
			os.Exit(1)
		}

		skill, err := discovery.GetSkill(args[0])
		if err != nil {
			presenter.Error(err, "Skill not found")
			os.Exit(1)
		}

		presenter.Section(skill.Name)
		presenter.Info("Directory:   " + skill.Directory)
		presenter.Info("Description: " + skill.Description)
		presenter.Separator()
		fmt.Print(skill.Content)
	},
}

func init() {
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillShowCmd)
}
