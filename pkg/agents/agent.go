// Package agents loads markdown agent definitions. An agent definition is a
// markdown file whose YAML frontmatter carries the agent's name, description,
// and constraints (model hint, tool and command allowlists); the body is the
// system prompt handed to the external agent CLI.
package agents

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/issuelet/issuelet/pkg/logger"
)

// AgentMetadata represents the YAML frontmatter configuration for an agent
type AgentMetadata struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Model           string   `yaml:"model,omitempty"`            // model hint forwarded to the agent CLI
	AllowedTools    []string `yaml:"allowed_tools,omitempty"`    // tools this agent can use
	AllowedCommands []string `yaml:"allowed_commands,omitempty"` // shell commands this agent can execute
}

// Agent represents a loaded agent with its metadata, system prompt, and file path
type Agent struct {
	Metadata     AgentMetadata
	SystemPrompt string
	Path         string
}

// AgentProcessor handles loading of agent definitions from disk
type AgentProcessor struct {
	agentDirs []string
}

// AgentProcessorOption configures an AgentProcessor
type AgentProcessorOption func(*AgentProcessor) error

// WithAgentDirs sets custom agent directories
func WithAgentDirs(dirs ...string) AgentProcessorOption {
	return func(ap *AgentProcessor) error {
		if len(dirs) == 0 {
			return errors.New("at least one agent directory must be specified")
		}
		ap.agentDirs = dirs
		return nil
	}
}

// WithDefaultDirs sets the default agent directories (./agents, ~/.issuelet/agents)
func WithDefaultDirs() AgentProcessorOption {
	return func(ap *AgentProcessor) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		ap.agentDirs = []string{
			"./agents", // Workspace-specific (higher precedence)
			filepath.Join(homeDir, ".issuelet", "agents"),
		}
		return nil
	}
}

// NewAgentProcessor creates a new agent processor with optional configuration
func NewAgentProcessor(opts ...AgentProcessorOption) (*AgentProcessor, error) {
	ap := &AgentProcessor{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(ap); err != nil {
			return nil, errors.Wrap(err, "failed to apply default agent directories")
		}
		return ap, nil
	}

	for _, opt := range opts {
		if err := opt(ap); err != nil {
			return nil, errors.Wrap(err, "failed to apply agent processor option")
		}
	}

	if len(ap.agentDirs) == 0 {
		if err := WithDefaultDirs()(ap); err != nil {
			return nil, errors.Wrap(err, "failed to apply default agent directories")
		}
	}

	return ap, nil
}

// findAgentFile searches for an agent file in the configured directories
func (ap *AgentProcessor) findAgentFile(agentName string) (string, error) {
	// Try both .md and no extension
	possibleNames := []string{
		agentName + ".md",
		agentName,
	}

	for _, dir := range ap.agentDirs {
		for _, name := range possibleNames {
			fullPath := filepath.Join(dir, name)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				return fullPath, nil
			}
		}
	}

	return "", errors.Errorf("agent '%s' not found in directories: %v", agentName, ap.agentDirs)
}

// parseFrontmatter extracts YAML frontmatter and body content from an agent markdown file
func (ap *AgentProcessor) parseFrontmatter(content string) (AgentMetadata, string, error) {
	var metadata AgentMetadata

	md := goldmark.New(
		goldmark.WithExtensions(
			meta.Meta,
		),
	)

	source := []byte(content)
	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return metadata, content, errors.Wrap(err, "failed to convert markdown")
	}

	metaData := meta.Get(pctx)
	if metaData != nil {
		if name, ok := metaData["name"].(string); ok {
			metadata.Name = name
		}
		if description, ok := metaData["description"].(string); ok {
			metadata.Description = description
		}
		if model, ok := metaData["model"].(string); ok {
			metadata.Model = model
		}
		if allowedTools := metaData["allowed_tools"]; allowedTools != nil {
			metadata.AllowedTools = ap.parseStringArrayField(allowedTools)
		}
		if allowedCommands := metaData["allowed_commands"]; allowedCommands != nil {
			metadata.AllowedCommands = ap.parseStringArrayField(allowedCommands)
		}
	}

	bodyContent := ap.extractBodyContent(content)
	return metadata, bodyContent, nil
}

// parseStringArrayField handles both []interface{} (YAML array) and string (comma-separated) formats
func (ap *AgentProcessor) parseStringArrayField(field interface{}) []string {
	switch v := field.(type) {
	case []interface{}:
		var result []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, strings.TrimSpace(str))
			}
		}
		return result
	case string:
		if v == "" {
			return []string{}
		}
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return []string{}
	}
}

// extractBodyContent extracts the markdown body content after YAML frontmatter
func (ap *AgentProcessor) extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	var frontmatterEnd = -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	contentLines := lines[frontmatterEnd+1:]
	return strings.Join(contentLines, "\n")
}

// LoadAgent loads a single agent by name
func (ap *AgentProcessor) LoadAgent(ctx context.Context, agentName string) (*Agent, error) {
	path, err := ap.findAgentFile(agentName)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("path", path).Debug("loading agent definition")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent file '%s'", path)
	}

	metadata, body, err := ap.parseFrontmatter(string(content))
	if err != nil {
		return nil, err
	}

	if metadata.Name == "" {
		metadata.Name = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	systemPrompt := strings.TrimSpace(body)
	if systemPrompt == "" {
		return nil, errors.Errorf("agent '%s' has an empty system prompt", agentName)
	}

	return &Agent{
		Metadata:     metadata,
		SystemPrompt: systemPrompt,
		Path:         path,
	}, nil
}

// ListAgents returns all agent definitions found in the configured
// directories, sorted by name. The first definition of a name wins.
func (ap *AgentProcessor) ListAgents(ctx context.Context) ([]*Agent, error) {
	seen := make(map[string]*Agent)

	for _, dir := range ap.agentDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}

			name := strings.TrimSuffix(entry.Name(), ".md")
			if _, exists := seen[name]; exists {
				continue
			}

			agent, err := ap.LoadAgent(ctx, name)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("file", entry.Name()).Debug("skipping invalid agent definition")
				continue
			}

			seen[name] = agent
		}
	}

	agents := make([]*Agent, 0, len(seen))
	for _, agent := range seen {
		agents = append(agents, agent)
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Metadata.Name < agents[j].Metadata.Name
	})

	return agents, nil
}
