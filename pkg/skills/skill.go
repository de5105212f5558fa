// Package skills discovers the markdown skill documents that make up an
// agent workspace. A skill is a directory containing a SKILL.md file whose
// YAML frontmatter names and describes it; the body is the instruction text
// handed to the agent.
package skills

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description of when the skill applies
	Directory   string // Full path to the skill directory
	Content     string // Full content of SKILL.md (body, not frontmatter)
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
