// Package history turns raw commit logs into the normalized per-file and
// per-commit tables, and filters those tables by contributor and time.
package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// commitFieldCount is the number of separated fields in one log record:
// hash, author name, author email, author date, committer name,
// committer email, committer date, body, numstat block.
const commitFieldCount = 9

// ParseCommitLog parses the output of `git log --numstat` produced with
// contract.CommitLogFormat. Commits are returned in log order.
func ParseCommitLog(out []byte) ([]schema.CommitRecord, error) {
	records := strings.Split(string(out), contract.RecordSeparator)
	commits := make([]schema.CommitRecord, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		commit, err := parseCommitRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("commit record %d: %w", i, err)
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// parseCommitRecord parses one record of separated header fields followed by numstat lines.
func parseCommitRecord(rec string) (schema.CommitRecord, error) {
	fields := strings.SplitN(rec, contract.FieldSeparator, commitFieldCount)
	if len(fields) != commitFieldCount {
		return schema.CommitRecord{}, fmt.Errorf("expected %d fields, got %d", commitFieldCount, len(fields))
	}

	authoredAt, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[3]))
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("authored date: %w", err)
	}
	committedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[6]))
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("committed date: %w", err)
	}

	commit := schema.CommitRecord{
		Hash:        strings.TrimSpace(fields[0]),
		Message:     strings.TrimRight(fields[7], "\r\n"),
		AuthoredAt:  authoredAt,
		CommittedAt: committedAt,
		Author:      schema.Identity{Name: fields[1], Email: fields[2]},
		Committer:   schema.Identity{Name: fields[4], Email: fields[5]},
		Files:       parseNumstat(fields[8]),
	}
	if commit.Hash == "" {
		return schema.CommitRecord{}, fmt.Errorf("empty commit hash")
	}
	return commit, nil
}

// parseNumstat parses "additions<TAB>deletions<TAB>path" lines.
// A path listed twice in one commit is merged.
func parseNumstat(block string) []schema.FileChange {
	var files []schema.FileChange
	seen := make(map[string]int)
	for l := range strings.SplitSeq(block, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		parts := strings.SplitN(l, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		path := resolvePath(parts[2])
		if path == "" {
			continue
		}
		add := parseChurnValue(parts[0])
		del := parseChurnValue(parts[1])
		if idx, ok := seen[path]; ok {
			files[idx].Insertions += add
			files[idx].Deletions += del
			files[idx].Lines += add + del
			continue
		}
		seen[path] = len(files)
		files = append(files, schema.FileChange{Path: path, Insertions: add, Deletions: del, Lines: add + del})
	}
	return files
}

// parseChurnValue converts a numstat count to int, handling "-" (binary) as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && val >= 0 {
		return val
	}
	return 0
}

// resolvePath returns the post-change path, following rename notation.
func resolvePath(path string) string {
	if !strings.Contains(path, " => ") {
		return path
	}
	_, newPath := parseRenamePath(path)
	return newPath
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	oldPath := joinRenamePath(prefix, renameParts[0], suffix)
	newPath := joinRenamePath(prefix, renameParts[1], suffix)
	return oldPath, newPath
}

// joinRenamePath glues a braced rename back together, collapsing the
// double slash left by an empty side ("a/{ => b}/c").
func joinRenamePath(prefix, middle, suffix string) string {
	if middle == "" {
		return prefix + strings.TrimPrefix(suffix, "/")
	}
	return prefix + middle + suffix
}
