package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repostats/schema"
)

// Color variables for console output.
var (
	HeaderColor = color.New(color.FgCyan, color.Bold) // HeaderColor highlights section headers.
	KeyColor    = color.New(color.FgYellow)           // KeyColor marks metric keys.
	WarnColor   = color.New(color.FgMagenta)          // WarnColor flags skipped repositories.
)

// remotePrefixes are the repository argument prefixes that mean "clone first".
var remotePrefixes = []string{"http://", "https://", "git@", "ssh://", "ftp://"}

// IsRemoteRepo reports whether a repository argument names a remote to clone.
func IsRemoteRepo(repo string) bool {
	for _, p := range remotePrefixes {
		if strings.HasPrefix(repo, p) {
			return true
		}
	}
	return false
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the platform cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repostats_cache.db"
	}
	return filepath.Join(homeDir, ".repostats_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repostats_analysis.db"
	}
	return filepath.Join(homeDir, ".repostats_analysis.db")
}

// TruncatePath truncates a string to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// githubRemotePattern matches the SSH and HTTPS forms of a GitHub remote.
var githubRemotePattern = regexp.MustCompile(`^(?:git@github\.com:|ssh://git@github\.com/|https?://(?:[^@/]+@)?github\.com/)([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRemote splits a GitHub remote URL into owner and name.
func ParseRemote(remote string) (schema.RepoRef, error) {
	m := githubRemotePattern.FindStringSubmatch(strings.TrimSpace(remote))
	if m == nil || m[1] == "" || m[2] == "" {
		return schema.RepoRef{}, &schema.UnresolvableRemoteError{Remote: remote}
	}
	return schema.RepoRef{Owner: m[1], Name: m[2]}, nil
}
