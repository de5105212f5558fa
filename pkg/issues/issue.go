// Package issues implements the filesystem convention for tracked work: one
// directory per issue under the issues root, moved wholesale to the archive
// root when closed. An issue directory is only recognized when it contains a
// problem.md file; the remaining artifact files accumulate as the issue moves
// through its lifecycle.
//
// No locking is performed. The store models the source convention of
// short-lived single invocations; concurrent archivers racing on one name
// surface the underlying filesystem error.
package issues

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ProblemFile is the marker artifact. A directory without it is not an issue.
const ProblemFile = "problem.md"

// ArtifactFiles lists the fixed artifact filenames in lifecycle order.
// All lowercase, case-sensitive.
var ArtifactFiles = []string{
	"problem.md",
	"validation.md",
	"proposals.md",
	"review.md",
	"implementation.md",
	"testing.md",
	"solution.md",
}

// Status is the free-text status marker embedded in problem.md
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
	StatusRejected Status = "REJECTED"
	StatusUnknown  Status = "UNKNOWN"
)

// Issue represents one issue directory
type Issue struct {
	Name      string   // directory name, kebab-case
	Path      string   // full path to the issue directory
	Archived  bool     // true when the issue lives under the archive root
	Status    Status   // parsed from the Status: marker in problem.md
	Artifacts []string // artifact files present, in lifecycle order
}

// Stage returns the furthest lifecycle artifact present, e.g. "testing" for
// an issue that has testing.md but no solution.md yet.
func (i *Issue) Stage() string {
	stage := ""
	for _, name := range ArtifactFiles {
		for _, present := range i.Artifacts {
			if present == name {
				stage = strings.TrimSuffix(name, ".md")
			}
		}
	}
	return stage
}

// Solved reports whether the issue has reached a solution
func (i *Issue) Solved() bool {
	for _, present := range i.Artifacts {
		if present == "solution.md" {
			return true
		}
	}
	return false
}

var kebabCaseRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateName checks that an issue name is kebab-case
func ValidateName(name string) error {
	if name == "" {
		return errors.New("issue name must not be empty")
	}
	if !kebabCaseRe.MatchString(name) {
		return errors.Errorf("issue name '%s' is not kebab-case (expected lowercase words separated by hyphens)", name)
	}
	return nil
}

// IsArtifact reports whether name is one of the fixed artifact filenames
func IsArtifact(name string) bool {
	for _, a := range ArtifactFiles {
		if a == name {
			return true
		}
	}
	return false
}

// ParseStatus extracts the Status: marker from problem.md content. The marker
// is free text inside the prose; the first line starting with "Status:" wins.
func ParseStatus(content string) Status {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Status:") {
			continue
		}
		value := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "Status:")))
		switch Status(value) {
		case StatusOpen, StatusResolved, StatusRejected:
			return Status(value)
		default:
			return StatusUnknown
		}
	}
	return StatusUnknown
}

// loadIssue reads one issue directory. Returns an error when the directory
// does not qualify as an issue (no problem.md).
func loadIssue(dir string, archived bool) (*Issue, error) {
	problemPath := filepath.Join(dir, ProblemFile)
	content, err := os.ReadFile(problemPath)
	if err != nil {
		return nil, errors.Wrapf(err, "'%s' is not an issue directory", dir)
	}

	issue := &Issue{
		Name:     filepath.Base(dir),
		Path:     dir,
		Archived: archived,
		Status:   ParseStatus(string(content)),
	}

	for _, name := range ArtifactFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			issue.Artifacts = append(issue.Artifacts, name)
		}
	}

	return issue, nil
}

// Problem returns the content of the issue's problem.md
func (i *Issue) Problem() (string, error) {
	content, err := os.ReadFile(filepath.Join(i.Path, ProblemFile))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s for issue '%s'", ProblemFile, i.Name)
	}
	return string(content), nil
}
