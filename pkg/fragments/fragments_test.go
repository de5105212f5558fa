package fragments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinFragments(t *testing.T) {
	ctx := context.Background()
	fp, err := NewFragmentProcessor(WithFragmentDirs(t.TempDir()))
	require.NoError(t, err)

	t.Run("refine", func(t *testing.T) {
		prompt, err := fp.LoadFragment(ctx, &FragmentConfig{
			FragmentName: "refine",
			Arguments: map[string]string{
				"name":         "bug-x",
				"problem":      "Status: OPEN\nsomething is broken",
				"problem_path": "issues/bug-x/problem.md",
			},
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "issue bug-x")
		assert.Contains(t, prompt, "something is broken")
		assert.Contains(t, prompt, "issues/bug-x/problem.md")
	})

	t.Run("solve", func(t *testing.T) {
		prompt, err := fp.LoadFragment(ctx, &FragmentConfig{
			FragmentName: "solve",
			Arguments: map[string]string{
				"name":       "bug-x",
				"problem":    "Status: OPEN\n",
				"issue_path": "issues/bug-x",
			},
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "solution.md")
		assert.Contains(t, prompt, "issues/bug-x")
	})

	t.Run("unknown workflow", func(t *testing.T) {
		_, err := fp.LoadFragment(ctx, &FragmentConfig{FragmentName: "no-such-workflow"})
		assert.Error(t, err)
	})
}

func TestUserFragmentShadowsBuiltin(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "solve.md"), []byte("custom solve for {{.name}}\n"), 0o644))

	fp, err := NewFragmentProcessor(WithFragmentDirs(tmpDir))
	require.NoError(t, err)

	prompt, err := fp.LoadFragment(ctx, &FragmentConfig{
		FragmentName: "solve",
		Arguments:    map[string]string{"name": "bug-x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "custom solve for bug-x\n", prompt)
}

func TestProcessTemplate(t *testing.T) {
	ctx := context.Background()
	fp := &FragmentProcessor{}

	t.Run("variable substitution", func(t *testing.T) {
		result, err := fp.processTemplate(ctx, "issue {{.name}} at {{.path}}", map[string]string{
			"name": "bug-x",
			"path": "issues/bug-x",
		})
		require.NoError(t, err)
		assert.Equal(t, "issue bug-x at issues/bug-x", result)
	})

	t.Run("bash substitution", func(t *testing.T) {
		result, err := fp.processTemplate(ctx, `{{bash "echo" "hello"}}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", result)
	})

	t.Run("failing bash command is reported inline", func(t *testing.T) {
		result, err := fp.processTemplate(ctx, `{{bash "false"}}`, nil)
		require.NoError(t, err)
		assert.Contains(t, result, "ERROR")
	})

	t.Run("invalid template", func(t *testing.T) {
		_, err := fp.processTemplate(ctx, "{{.unclosed", nil)
		assert.Error(t, err)
	})
}

func TestListFragments(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "triage.md"), []byte("triage {{.name}}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "refine.md"), []byte("custom refine\n"), 0o644))

	fp, err := NewFragmentProcessor(WithFragmentDirs(tmpDir))
	require.NoError(t, err)

	names, err := fp.ListFragments()
	require.NoError(t, err)

	// user fragments first, builtins appended without duplicates
	assert.ElementsMatch(t, []string{"triage", "refine", "solve"}, names)
}
