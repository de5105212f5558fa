package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/issues"
	"github.com/issuelet/issuelet/pkg/presenter"
)

type ListConfig struct {
	Match string
	Long  bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		Match: "",
		Long:  false,
	}
}

var listOpenCmd = &cobra.Command{
	Use:   "list-open",
	Short: "List active issues",
	Long: `List the issues under the issues root, one name per line in
lexicographic order. Only directories containing a problem.md count as
issues. A missing issues root yields empty output.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runList(cmd, false)
	},
}

var listSolvedCmd = &cobra.Command{
	Use:   "list-solved",
	Short: "List archived issues",
	Long: `List the issues under the archive root, one name per line in
lexicographic order. A missing archive root yields empty output.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runList(cmd, true)
	},
}

func init() {
	defaults := NewListConfig()
	for _, cmd := range []*cobra.Command{listOpenCmd, listSolvedCmd} {
		cmd.Flags().StringP("match", "m", defaults.Match, "Only list issues whose name matches this glob pattern")
		cmd.Flags().BoolP("long", "l", defaults.Long, "Show status and lifecycle stage alongside names")
	}
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if match, err := cmd.Flags().GetString("match"); err == nil {
		config.Match = match
	}
	if long, err := cmd.Flags().GetBool("long"); err == nil {
		config.Long = long
	}
	return config
}

func runList(cmd *cobra.Command, archived bool) {
	ctx := cmd.Context()
	listConfig := getListConfigFromFlags(cmd)
	store := getStore(getConfig())

	var (
		list []*issues.Issue
		err  error
	)
	if archived {
		list, err = store.ListSolved(ctx)
	} else {
		list, err = store.ListOpen(ctx)
	}
	if err != nil {
		presenter.Error(err, "Failed to list issues")
		os.Exit(1)
	}

	list, err = issues.Filter(list, listConfig.Match)
	if err != nil {
		presenter.Error(err, "Invalid match pattern")
		os.Exit(1)
	}

	if listConfig.Long {
		printIssueTable(list)
		return
	}

	for _, issue := range list {
		fmt.Println(issue.Name)
	}
}

func printIssueTable(list []*issues.Issue) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tSTAGE")
	fmt.Fprintln(tw, "----\t------\t-----")
	for _, issue := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", issue.Name, issue.Status, issue.Stage())
	}
	tw.Flush()
}
