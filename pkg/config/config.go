// Package config loads issuelet configuration from its config file,
// environment variables, and CLI flags via viper. The documented ISSUES_DIR
// and ARCHIVE_DIR environment variables are honored alongside the ISSUELET_
// prefixed forms.
package config

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the root issuelet configuration
type Config struct {
	IssuesDir  string                   `mapstructure:"issues_dir"`
	ArchiveDir string                   `mapstructure:"archive_dir"`
	LogLevel   string                   `mapstructure:"log_level"`
	LogFormat  string                   `mapstructure:"log_format"`
	Agent      AgentConfig              `mapstructure:"agent"`
	Profiles   map[string]ProfileConfig `mapstructure:"profiles"`
}

// AgentConfig configures the external agent CLI that refine and
// solve-unsolved delegate to
type AgentConfig struct {
	Command    string        `mapstructure:"command"`
	Args       []string      `mapstructure:"args"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ProfileConfig holds profile-specific configuration overrides as raw values
type ProfileConfig map[string]interface{}

// Init configures viper: env bindings, config file locations, and defaults.
// Called once from the CLI entrypoint before any command runs.
func Init() {
	viper.SetEnvPrefix("ISSUELET")
	viper.AutomaticEnv()

	// The bare env var names are the documented interface for the store
	// roots, so they are bound explicitly in addition to AutomaticEnv.
	_ = viper.BindEnv("issues_dir", "ISSUELET_ISSUES_DIR", "ISSUES_DIR")
	_ = viper.BindEnv("archive_dir", "ISSUELET_ARCHIVE_DIR", "ARCHIVE_DIR")

	viper.SetConfigType("yaml")

	viper.SetDefault("issues_dir", "issues")
	viper.SetDefault("archive_dir", "archive")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("agent.command", "claude")
	viper.SetDefault("agent.args", []string{"-p"})
	viper.SetDefault("agent.max_retries", 2)

	// Global config from the home directory, then workspace-local
	// overrides from ./issuelet-config.yaml (ignore missing files)
	viper.SetConfigName("config")
	viper.AddConfigPath("$HOME/.issuelet")
	_ = viper.ReadInConfig()

	viper.SetConfigName("issuelet-config")
	viper.AddConfigPath(".")
	_ = viper.MergeInConfig()
}

// GetConfigFromViper returns the resolved configuration, with the active
// profile (if any) applied on top of the base settings.
func GetConfigFromViper() (Config, error) {
	var config Config

	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if config.Profiles != nil {
		delete(config.Profiles, "default")
	}

	profileName := getActiveProfile()
	if profileName != "" {
		profile, exists := config.Profiles[profileName]
		if !exists {
			return config, errors.Errorf("profile '%s' not found in configuration", profileName)
		}
		if err := applyProfile(&config, profile); err != nil {
			return config, err
		}
	}

	return config, nil
}

func getActiveProfile() string {
	profile := viper.GetString("profile")
	if profile == "default" || profile == "" {
		return ""
	}
	return profile
}

func applyProfile(config *Config, profile ProfileConfig) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false, // Don't overwrite with zero values
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(map[string]interface{}(profile)); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}

	return nil
}
