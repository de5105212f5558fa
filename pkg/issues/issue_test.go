package issues

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Status
	}{
		{
			name:     "open status",
			content:  "# bug-x\n\nStatus: OPEN\n\nSome prose.\n",
			expected: StatusOpen,
		},
		{
			name:     "resolved status",
			content:  "# bug-x\n\nStatus: RESOLVED\n",
			expected: StatusResolved,
		},
		{
			name:     "rejected status",
			content:  "# bug-x\n\nStatus: REJECTED\n",
			expected: StatusRejected,
		},
		{
			name:     "lowercase status is normalized",
			content:  "Status: open\n",
			expected: StatusOpen,
		},
		{
			name:     "indented status line",
			content:  "prose first\n  Status: OPEN\n",
			expected: StatusOpen,
		},
		{
			name:     "no status marker",
			content:  "# bug-x\n\nJust prose.\n",
			expected: StatusUnknown,
		},
		{
			name:     "unrecognized status value",
			content:  "Status: MAYBE\n",
			expected: StatusUnknown,
		},
		{
			name:     "first status line wins",
			content:  "Status: OPEN\nStatus: RESOLVED\n",
			expected: StatusOpen,
		},
		{
			name:     "empty content",
			content:  "",
			expected: StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStatus(tt.content))
		})
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"bug-x", "fix-flaky-watcher", "a", "issue-2", "v2-rollout"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), "expected '%s' to be valid", name)
	}

	invalid := []string{"", "Bug-X", "bug_x", "bug x", "-bug", "bug-", "bug--x", "büg"}
	for _, name := range invalid {
		assert.Error(t, ValidateName(name), "expected '%s' to be invalid", name)
	}
}

func TestIssueStage(t *testing.T) {
	tests := []struct {
		name      string
		artifacts []string
		expected  string
	}{
		{
			name:      "problem only",
			artifacts: []string{"problem.md"},
			expected:  "problem",
		},
		{
			name:      "through review",
			artifacts: []string{"problem.md", "validation.md", "review.md"},
			expected:  "review",
		},
		{
			name:      "solved",
			artifacts: []string{"problem.md", "solution.md"},
			expected:  "solution",
		},
		{
			name:      "no artifacts",
			artifacts: nil,
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := &Issue{Name: "x", Artifacts: tt.artifacts}
			assert.Equal(t, tt.expected, issue.Stage())
		})
	}
}

func TestIssueSolved(t *testing.T) {
	solved := &Issue{Artifacts: []string{"problem.md", "solution.md"}}
	assert.True(t, solved.Solved())

	unsolved := &Issue{Artifacts: []string{"problem.md", "testing.md"}}
	assert.False(t, unsolved.Solved())
}

func TestLoadIssue(t *testing.T) {
	tmpDir := t.TempDir()
	issueDir := filepath.Join(tmpDir, "bug-x")
	require.NoError(t, os.MkdirAll(issueDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(issueDir, "problem.md"), []byte("# bug-x\n\nStatus: OPEN\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(issueDir, "validation.md"), []byte("validated\n"), 0o644))

	issue, err := loadIssue(issueDir, false)
	require.NoError(t, err)
	assert.Equal(t, "bug-x", issue.Name)
	assert.Equal(t, issueDir, issue.Path)
	assert.False(t, issue.Archived)
	assert.Equal(t, StatusOpen, issue.Status)
	assert.Equal(t, []string{"problem.md", "validation.md"}, issue.Artifacts)

	problem, err := issue.Problem()
	require.NoError(t, err)
	assert.Contains(t, problem, "Status: OPEN")
}

func TestLoadIssueWithoutProblemFile(t *testing.T) {
	tmpDir := t.TempDir()
	issueDir := filepath.Join(tmpDir, "empty-dir")
	require.NoError(t, os.MkdirAll(issueDir, 0o755))

	_, err := loadIssue(issueDir, false)
	assert.Error(t, err)
}
