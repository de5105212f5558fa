package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/issuelet/issuelet/pkg/config"
	"github.com/issuelet/issuelet/pkg/issues"
	"github.com/issuelet/issuelet/pkg/logger"
	"github.com/issuelet/issuelet/pkg/presenter"
)

func init() {
	config.Init()
}

var rootCmd = &cobra.Command{
	Use:   "issuelet",
	Short: "Manage markdown-driven agent workspaces",
	Long: `Issuelet manages the filesystem conventions of a markdown-driven agent
workspace: the issues/ and archive/ issue lifecycle store, SKILL.md skill
directories, and markdown agent definitions. Problem-solving itself is
delegated to an external agent CLI.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// getConfig resolves the configuration or exits
func getConfig() config.Config {
	cfg, err := config.GetConfigFromViper()
	if err != nil {
		presenter.Error(err, "Failed to load configuration")
		os.Exit(1)
	}
	return cfg
}

// getStore builds the issue store from the resolved configuration or exits
func getStore(cfg config.Config) *issues.Store {
	store, err := issues.NewStore(issues.WithDirs(cfg.IssuesDir, cfg.ArchiveDir))
	if err != nil {
		presenter.Error(err, "Failed to initialize issue store")
		os.Exit(1)
	}
	return store
}

func main() {
	rootCmd.PersistentFlags().String("issues-dir", "issues", "Root directory for active issues (env: ISSUES_DIR)")
	rootCmd.PersistentFlags().String("archive-dir", "archive", "Root directory for archived issues (env: ARCHIVE_DIR)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json, text)")
	rootCmd.PersistentFlags().String("profile", "", "Configuration profile to apply")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-essential output")

	viper.BindPFlag("issues_dir", rootCmd.PersistentFlags().Lookup("issues-dir"))
	viper.BindPFlag("archive_dir", rootCmd.PersistentFlags().Lookup("archive-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	rootCmd.AddCommand(listOpenCmd)
	rootCmd.AddCommand(listSolvedCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(solveUnsolvedCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
