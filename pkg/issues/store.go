package issues

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/issuelet/issuelet/pkg/logger"
)

// collisionSuffixFormat is appended to an archived issue's name when the
// archive already holds a directory of the same name.
const collisionSuffixFormat = "20060102-150405"

// Store provides access to the issue directories
type Store struct {
	issuesDir  string
	archiveDir string
	now        func() time.Time
}

// Option is a function that configures a Store
type Option func(*Store) error

// WithDirs sets the issues and archive root directories
func WithDirs(issuesDir, archiveDir string) Option {
	return func(s *Store) error {
		if issuesDir == "" || archiveDir == "" {
			return errors.New("issues and archive directories must not be empty")
		}
		s.issuesDir = issuesDir
		s.archiveDir = archiveDir
		return nil
	}
}

// NewStore creates a store rooted at the given directories, defaulting to
// ./issues and ./archive
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		issuesDir:  "issues",
		archiveDir: "archive",
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// IssuesDir returns the active issues root
func (s *Store) IssuesDir() string {
	return s.issuesDir
}

// ArchiveDir returns the archive root
func (s *Store) ArchiveDir() string {
	return s.archiveDir
}

// ListOpen returns the active issues, lexicographically sorted by name.
// A missing issues root yields an empty result rather than an error.
func (s *Store) ListOpen(ctx context.Context) ([]*Issue, error) {
	return s.listDir(ctx, s.issuesDir, false)
}

// ListSolved returns the archived issues, lexicographically sorted by name.
// A missing archive root yields an empty result rather than an error.
func (s *Store) ListSolved(ctx context.Context) ([]*Issue, error) {
	return s.listDir(ctx, s.archiveDir, true)
}

func (s *Store) listDir(ctx context.Context, root string, archived bool) ([]*Issue, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			logger.G(ctx).WithField("root", root).Debug("issue root does not exist, returning empty list")
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read issue root '%s'", root)
	}

	var issues []*Issue
	for _, entry := range entries {
		entryPath := filepath.Join(root, entry.Name())

		// os.Stat rather than entry.IsDir so symlinked issue
		// directories are followed
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		issue, err := loadIssue(entryPath, archived)
		if err != nil {
			logger.G(ctx).WithField("dir", entryPath).Debug("skipping directory without problem.md")
			continue
		}

		issues = append(issues, issue)
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].Name < issues[j].Name
	})

	return issues, nil
}

// Filter returns the issues whose names match the doublestar pattern.
// An empty pattern matches everything.
func Filter(issues []*Issue, pattern string) ([]*Issue, error) {
	if pattern == "" {
		return issues, nil
	}

	var filtered []*Issue
	for _, issue := range issues {
		matched, err := doublestar.Match(pattern, issue.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern '%s'", pattern)
		}
		if matched {
			filtered = append(filtered, issue)
		}
	}
	return filtered, nil
}

// Get returns the named issue, searching the issues root first and the
// archive root second.
func (s *Store) Get(_ context.Context, name string) (*Issue, error) {
	if issue, err := loadIssue(filepath.Join(s.issuesDir, name), false); err == nil {
		return issue, nil
	}
	if issue, err := loadIssue(filepath.Join(s.archiveDir, name), true); err == nil {
		return issue, nil
	}
	return nil, errors.Errorf("issue '%s' not found under '%s' or '%s'", name, s.issuesDir, s.archiveDir)
}

// Create scaffolds a new issue directory with a problem.md marked OPEN
func (s *Store) Create(ctx context.Context, name string) (*Issue, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.issuesDir, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Errorf("issue '%s' already exists", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create issue directory '%s'", dir)
	}

	content := fmt.Sprintf("# %s\n\nStatus: OPEN\n\n## Problem\n\nDescribe the problem here.\n", name)
	if err := os.WriteFile(filepath.Join(dir, ProblemFile), []byte(content), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", ProblemFile)
	}

	logger.G(ctx).WithField("issue", name).Info("created issue")

	return loadIssue(dir, false)
}

// Archive moves the named issue from the issues root to the archive root and
// returns the destination path. The archive root is created if absent. When
// the archive already holds a directory of the same name, the moved directory
// gets a timestamp suffix and the existing entry is left untouched. No
// filesystem mutation happens when the issue does not exist.
func (s *Store) Archive(ctx context.Context, name string) (string, error) {
	src := filepath.Join(s.issuesDir, name)
	info, err := os.Stat(src)
	if err != nil {
		return "", errors.Errorf("issue '%s' not found in '%s'", name, s.issuesDir)
	}
	if !info.IsDir() {
		return "", errors.Errorf("'%s' is not an issue directory", src)
	}

	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create archive root '%s'", s.archiveDir)
	}

	dest := filepath.Join(s.archiveDir, name)
	if _, err := os.Stat(dest); err == nil {
		suffixed := name + "-" + s.now().Format(collisionSuffixFormat)
		dest = filepath.Join(s.archiveDir, suffixed)
		for n := 2; ; n++ {
			_, err := os.Stat(dest)
			if os.IsNotExist(err) {
				break
			}
			if err != nil {
				return "", errors.Wrapf(err, "failed to probe archive destination '%s'", dest)
			}
			dest = filepath.Join(s.archiveDir, fmt.Sprintf("%s-%d", suffixed, n))
		}
		logger.G(ctx).WithFields(map[string]interface{}{
			"issue": name,
			"dest":  dest,
		}).Info("archive name collision, appending timestamp suffix")
	}

	if err := moveDir(src, dest); err != nil {
		return "", errors.Wrapf(err, "failed to archive issue '%s'", name)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"issue": name,
		"dest":  dest,
	}).Info("archived issue")

	return dest, nil
}

// moveDir renames a directory, falling back to copy+remove only when the
// rename crosses filesystems. Any other rename failure is returned as is so
// the destination is never merged into.
func moveDir(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || linkErr.Err != syscall.EXDEV {
		return err
	}

	if err := copyDir(src, dest); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// Lint validates the whole store and aggregates every finding: non-kebab-case
// directory names, issue directories without problem.md, unknown Status:
// values, and stray markdown files that are not part of the artifact set.
func (s *Store) Lint(ctx context.Context) error {
	var result *multierror.Error

	entries, err := os.ReadDir(s.issuesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read issue root '%s'", s.issuesDir)
	}

	for _, entry := range entries {
		entryPath := filepath.Join(s.issuesDir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			result = multierror.Append(result, errors.Errorf("'%s' is not a directory", entryPath))
			continue
		}

		if err := ValidateName(entry.Name()); err != nil {
			result = multierror.Append(result, err)
		}

		issue, err := loadIssue(entryPath, false)
		if err != nil {
			result = multierror.Append(result, errors.Errorf("issue '%s' has no %s", entry.Name(), ProblemFile))
			continue
		}

		if issue.Status == StatusUnknown {
			result = multierror.Append(result, errors.Errorf("issue '%s' has a missing or unknown Status: marker", entry.Name()))
		}

		files, err := os.ReadDir(entryPath)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to read issue '%s'", entry.Name()))
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			if strings.HasSuffix(f.Name(), ".md") && !IsArtifact(f.Name()) {
				result = multierror.Append(result, errors.Errorf("issue '%s' contains unexpected markdown file '%s'", entry.Name(), f.Name()))
			}
		}
	}

	if result != nil {
		logger.G(ctx).WithField("findings", result.Len()).Debug("lint finished with findings")
	}

	return result.ErrorOrNil()
}
