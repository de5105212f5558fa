package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	Init()
}

func TestDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "issues", cfg.IssuesDir)
	assert.Equal(t, "archive", cfg.ArchiveDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "claude", cfg.Agent.Command)
	assert.Equal(t, []string{"-p"}, cfg.Agent.Args)
	assert.Equal(t, 2, cfg.Agent.MaxRetries)
}

func TestBareEnvVars(t *testing.T) {
	t.Setenv("ISSUES_DIR", "/work/issues")
	t.Setenv("ARCHIVE_DIR", "/work/archive")
	resetViper(t)

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "/work/issues", cfg.IssuesDir)
	assert.Equal(t, "/work/archive", cfg.ArchiveDir)
}

func TestPrefixedEnvVarsWin(t *testing.T) {
	t.Setenv("ISSUES_DIR", "/bare")
	t.Setenv("ISSUELET_ISSUES_DIR", "/prefixed")
	resetViper(t)

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "/prefixed", cfg.IssuesDir)
}

func TestWorkspaceConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	content := "issues_dir: tracked-issues\nagent:\n  command: my-agent\n"
	require.NoError(t, os.WriteFile("issuelet-config.yaml", []byte(content), 0o644))
	resetViper(t)

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "tracked-issues", cfg.IssuesDir)
	assert.Equal(t, "my-agent", cfg.Agent.Command)
	// untouched keys keep their defaults
	assert.Equal(t, "archive", cfg.ArchiveDir)
}

func TestProfileOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("profiles", map[string]interface{}{
		"fast": map[string]interface{}{
			"agent": map[string]interface{}{
				"command":     "fast-agent",
				"max_retries": 1,
			},
		},
	})
	viper.Set("profile", "fast")

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "fast-agent", cfg.Agent.Command)
	assert.Equal(t, 1, cfg.Agent.MaxRetries)
	// untouched settings keep their base values
	assert.Equal(t, "issues", cfg.IssuesDir)
}

func TestUnknownProfile(t *testing.T) {
	resetViper(t)
	viper.Set("profile", "nonexistent")

	_, err := GetConfigFromViper()
	assert.Error(t, err)
}

func TestDefaultProfileIsIgnored(t *testing.T) {
	resetViper(t)
	viper.Set("profile", "default")

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "claude", cfg.Agent.Command)
}

func TestAgentTimeout(t *testing.T) {
	resetViper(t)
	viper.Set("agent.timeout", "5m")

	cfg, err := GetConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Agent.Timeout)
}
