package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, root, dirName, name, description string) string {
	t.Helper()
	dir := filepath.Join(root, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n# " + name + "\n\nInstructions.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
	return dir
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Len(t, discovery.skillDirs, 2)
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
	})
}

func TestDiscoverSkills(t *testing.T) {
	tmpDir := t.TempDir()
	skillDir := writeSkill(t, tmpDir, "writing-agents", "writing-agents", "How to write agent definitions")
	writeSkill(t, tmpDir, "testing-operators", "testing-operators", "Testing Kubernetes operators with Chainsaw")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, skills, 2)

	skill, exists := skills["writing-agents"]
	require.True(t, exists)
	assert.Equal(t, "writing-agents", skill.Name)
	assert.Equal(t, "How to write agent definitions", skill.Description)
	assert.Equal(t, skillDir, skill.Directory)
	assert.Contains(t, skill.Content, "# writing-agents")
	assert.NotContains(t, skill.Content, "description:")
}

func TestDiscoverSkillsPrecedence(t *testing.T) {
	localDir := t.TempDir()
	globalDir := t.TempDir()
	writeSkill(t, localDir, "shared-skill", "shared-skill", "local copy")
	writeSkill(t, globalDir, "shared-skill", "shared-skill", "global copy")

	discovery, err := NewDiscovery(WithSkillDirs(localDir, globalDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "local copy", skills["shared-skill"].Description)
}

func TestDiscoverSkillsSkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	// no SKILL.md at all
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "no-skill-file"), 0o755))

	// SKILL.md without frontmatter
	bareDir := filepath.Join(tmpDir, "bare-skill")
	require.NoError(t, os.MkdirAll(bareDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bareDir, "SKILL.md"), []byte("# no frontmatter\n"), 0o644))

	// frontmatter missing description
	noDescDir := filepath.Join(tmpDir, "no-desc")
	require.NoError(t, os.MkdirAll(noDescDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noDescDir, "SKILL.md"), []byte("---\nname: no-desc\n---\nbody\n"), 0o644))

	writeSkill(t, tmpDir, "valid-skill", "valid-skill", "the only valid one")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Contains(t, skills, "valid-skill")
}

func TestGetSkill(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "known-skill", "known-skill", "exists")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skill, err := discovery.GetSkill("known-skill")
	require.NoError(t, err)
	assert.Equal(t, "known-skill", skill.Name)

	_, err = discovery.GetSkill("missing-skill")
	assert.Error(t, err)
}

func TestListSkillNames(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "skill-a", "skill-a", "a")
	writeSkill(t, tmpDir, "skill-b", "skill-b", "b")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	names, err := discovery.ListSkillNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"skill-a", "skill-b"}, names)
}

func TestExtractBodyContent(t *testing.T) {
	t.Run("strips frontmatter", func(t *testing.T) {
		content := "---\nname: x\n---\n\nbody text\n"
		assert.Equal(t, "body text\n", extractBodyContent(content))
	})

	t.Run("no frontmatter", func(t *testing.T) {
		content := "plain body\n"
		assert.Equal(t, content, extractBodyContent(content))
	})

	t.Run("unterminated frontmatter", func(t *testing.T) {
		content := "---\nname: x\nbody without closing fence\n"
		assert.Equal(t, content, extractBodyContent(content))
	})
}
