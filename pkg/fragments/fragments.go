// Package fragments provides the workflow prompt templates used when
// delegating issue work to the external agent CLI. Builtin workflows are
// embedded in the binary; user-provided templates in ./workflows or
// ~/.issuelet/workflows shadow them.
package fragments

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/issuelet/issuelet/pkg/logger"
)

// FragmentConfig holds configuration for fragment processing
type FragmentConfig struct {
	FragmentName string
	Arguments    map[string]string
}

// FragmentProcessor handles fragment loading and rendering
type FragmentProcessor struct {
	fragmentDirs []string
}

// FragmentProcessorOption is a function that configures a FragmentProcessor
type FragmentProcessorOption func(*FragmentProcessor) error

// WithFragmentDirs sets custom fragment directories
func WithFragmentDirs(dirs ...string) FragmentProcessorOption {
	return func(fp *FragmentProcessor) error {
		if len(dirs) == 0 {
			return errors.New("at least one fragment directory must be specified")
		}
		fp.fragmentDirs = dirs
		return nil
	}
}

// WithDefaultFragmentDirs resets to default fragment directories
func WithDefaultFragmentDirs() FragmentProcessorOption {
	return func(fp *FragmentProcessor) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		fp.fragmentDirs = []string{
			"./workflows", // Workspace-specific (higher precedence)
			filepath.Join(homeDir, ".issuelet", "workflows"),
		}
		return nil
	}
}

// NewFragmentProcessor creates a new fragment processor with optional configuration
func NewFragmentProcessor(opts ...FragmentProcessorOption) (*FragmentProcessor, error) {
	fp := &FragmentProcessor{}

	if len(opts) == 0 {
		if err := WithDefaultFragmentDirs()(fp); err != nil {
			return nil, errors.Wrap(err, "failed to apply default fragment directories")
		}
		return fp, nil
	}

	for _, opt := range opts {
		if err := opt(fp); err != nil {
			return nil, errors.Wrap(err, "failed to apply fragment processor option")
		}
	}

	if len(fp.fragmentDirs) == 0 {
		if err := WithDefaultFragmentDirs()(fp); err != nil {
			return nil, errors.Wrap(err, "failed to apply default fragment directories")
		}
	}

	return fp, nil
}

// findFragment returns the template content for a fragment name, with user
// directories shadowing the embedded builtins
func (fp *FragmentProcessor) findFragment(fragmentName string) (string, error) {
	// Try both .md and no extension
	possibleNames := []string{
		fragmentName + ".md",
		fragmentName,
	}

	for _, dir := range fp.fragmentDirs {
		for _, name := range possibleNames {
			fullPath := filepath.Join(dir, name)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				content, err := os.ReadFile(fullPath)
				if err != nil {
					return "", errors.Wrapf(err, "failed to read fragment file '%s'", fullPath)
				}
				return string(content), nil
			}
		}
	}

	if content, ok := builtinFragment(fragmentName); ok {
		return content, nil
	}

	return "", errors.Errorf("workflow '%s' not found in directories %v or builtins", fragmentName, fp.fragmentDirs)
}

// LoadFragment loads and renders a fragment with the given arguments
func (fp *FragmentProcessor) LoadFragment(ctx context.Context, config *FragmentConfig) (string, error) {
	logger.G(ctx).WithField("fragment", config.FragmentName).Debug("loading workflow fragment")

	content, err := fp.findFragment(config.FragmentName)
	if err != nil {
		return "", err
	}

	processed, err := fp.processTemplate(ctx, content, config.Arguments)
	if err != nil {
		return "", errors.Wrapf(err, "failed to process workflow template '%s'", config.FragmentName)
	}

	return processed, nil
}

// processTemplate processes a template string with variable substitution and
// bash command execution via FuncMap
func (fp *FragmentProcessor) processTemplate(ctx context.Context, templateContent string, args map[string]string) (string, error) {
	tmpl, err := template.New("fragment").Funcs(template.FuncMap{
		"bash": fp.createBashFunc(ctx),
	}).Parse(templateContent)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, args)
	if err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return buf.String(), nil
}

// createBashFunc returns a function usable in templates to substitute the
// output of a command
func (fp *FragmentProcessor) createBashFunc(ctx context.Context) func(...string) string {
	return func(args ...string) string {
		if len(args) == 0 {
			return "[ERROR: bash function requires at least one argument]"
		}

		command := args[0]
		cmdArgs := args[1:]

		cmdCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		cmd := exec.CommandContext(cmdCtx, command, cmdArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			fullCmd := append([]string{command}, cmdArgs...)
			logger.G(ctx).WithFields(map[string]interface{}{
				"command": command,
				"args":    cmdArgs,
			}).WithError(err).Warn("bash command in workflow template failed")
			return fmt.Sprintf("[ERROR executing command '%s': %v]", strings.Join(fullCmd, " "), err)
		}

		// Remove trailing newlines for cleaner substitution
		return strings.TrimRight(string(output), "\n\r")
	}
}

// ListFragments returns the available workflow names, user directories first,
// builtins last, without duplicates
func (fp *FragmentProcessor) ListFragments() ([]string, error) {
	var fragments []string
	seen := make(map[string]bool)

	for _, dir := range fp.fragmentDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Directory might not exist, continue
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := strings.TrimSuffix(entry.Name(), ".md")

			if !seen[name] {
				fragments = append(fragments, name)
				seen[name] = true
			}
		}
	}

	for _, name := range builtinFragmentNames() {
		if !seen[name] {
			fragments = append(fragments, name)
			seen[name] = true
		}
	}

	return fragments, nil
}
