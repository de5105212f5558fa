package runner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"

	"github.com/issuelet/issuelet/pkg/issues"
)

// RefineIssue runs the agent against an issue's problem.md and returns a
// unified diff of what the agent changed. An empty diff means the agent left
// the file as it was.
func (r *Runner) RefineIssue(ctx context.Context, issue *issues.Issue, req *RunRequest) (string, error) {
	problemPath := filepath.Join(issue.Path, issues.ProblemFile)

	before, err := os.ReadFile(problemPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s before refining", problemPath)
	}

	if err := r.Run(ctx, req); err != nil {
		return "", err
	}

	after, err := os.ReadFile(problemPath)
	if err != nil {
		return "", errors.Wrapf(err, "%s is missing after the agent run", problemPath)
	}

	label := filepath.ToSlash(filepath.Join(issue.Name, issues.ProblemFile))
	return udiff.Unified("a/"+label, "b/"+label, string(before), string(after)), nil
}
