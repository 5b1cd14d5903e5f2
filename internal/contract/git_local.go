package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/huangsam/repostats/schema"
)

// Separators used by CommitLogFormat. Neither can appear in names, emails or dates.
const (
	RecordSeparator = "\x1e"
	FieldSeparator  = "\x1f"
)

// CommitLogFormat is the --pretty format for GetCommitLog: hash, author name,
// author email, author date, committer name, committer email, committer date
// and raw body, each followed by a field separator. The numstat block follows.
const CommitLogFormat = "%x1e%H%x1f%an%x1f%ae%x1f%aI%x1f%cn%x1f%ce%x1f%cI%x1f%B%x1f"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	return c.exec(ctx, repoPath, fullArgs...)
}

func (c *LocalGitClient) exec(ctx context.Context, where string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("git command interrupted: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", where, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCurrentRef implements the GitClient interface.
func (c *LocalGitClient) GetCurrentRef(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	ref := strings.TrimSpace(string(out))
	if ref != "HEAD" {
		return ref, nil
	}
	// Detached HEAD: restore to the exact commit
	return c.GetRepoHash(ctx, repoPath)
}

// GetRemoteURL implements the GitClient interface.
func (c *LocalGitClient) GetRemoteURL(ctx context.Context, repoPath string, remote string) (string, error) {
	out, err := c.Run(ctx, repoPath, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCommitLog implements the GitClient interface.
func (c *LocalGitClient) GetCommitLog(ctx context.Context, repoPath string) ([]byte, error) {
	args := []string{
		"log",
		"--numstat",
		"--no-color",
		"--pretty=format:" + CommitLogFormat,
	}
	return c.Run(ctx, repoPath, args...)
}

// ListTags implements the GitClient interface.
func (c *LocalGitClient) ListTags(ctx context.Context, repoPath string) ([]schema.Tag, error) {
	args := []string{
		"for-each-ref",
		"--format=%(refname:short)%1f%(creatordate:iso-strict)",
		"refs/tags",
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return parseTagLines(string(out))
}

// parseTagLines parses "name<US>date" lines. Tags without a date keep a zero time.
func parseTagLines(out string) ([]schema.Tag, error) {
	var tags []schema.Tag
	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		name, dateStr, _ := strings.Cut(line, FieldSeparator)
		tag := schema.Tag{Name: name}
		if dateStr = strings.TrimSpace(dateStr); dateStr != "" {
			t, err := time.Parse(time.RFC3339, dateStr)
			if err != nil {
				return nil, fmt.Errorf("tag %s: %w", name, err)
			}
			tag.CreatedAt = t
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	_, err := c.Run(ctx, repoPath, "checkout", "--quiet", ref)
	return err
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url string, dest string) error {
	_, err := c.exec(ctx, dest, "clone", "--quiet", url, dest)
	return err
}
