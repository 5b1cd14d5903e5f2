// Package doclint checks a working tree for standard community documentation.
package doclint

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// Rule is satisfied when any of the searched directories holds a file whose
// lowercased stem is listed in Stems, or a non-empty directory listed in DirNames.
type Rule struct {
	Name     string
	Dirs     []string
	Stems    []string
	DirNames []string
}

var communityDirs = []string{".", ".github", "docs"}

// DefaultRules lists the documentation checked for every repository.
var DefaultRules = []Rule{
	{Name: "readme", Dirs: communityDirs, Stems: []string{"readme"}},
	{Name: "license", Dirs: communityDirs, Stems: []string{"license", "licence", "copying"}},
	{Name: "contributing", Dirs: communityDirs, Stems: []string{"contributing"}},
	{Name: "code_of_conduct", Dirs: communityDirs, Stems: []string{"code_of_conduct", "code-of-conduct"}},
	{Name: "changelog", Dirs: communityDirs, Stems: []string{"changelog", "changes", "history", "news"}},
	{Name: "security", Dirs: communityDirs, Stems: []string{"security"}},
	{Name: "support", Dirs: communityDirs, Stems: []string{"support"}},
	{Name: "citation", Dirs: []string{"."}, Stems: []string{"citation", "codemeta"}},
	{Name: "issue_templates", Dirs: communityDirs, Stems: []string{"issue_template"}, DirNames: []string{"issue_template"}},
	{Name: "pull_request_template", Dirs: communityDirs, Stems: []string{"pull_request_template"}, DirNames: []string{"pull_request_template"}},
	{
		Name:     "ci_config",
		Dirs:     []string{".", ".github"},
		Stems:    []string{".travis", ".gitlab-ci", "azure-pipelines", "jenkinsfile", ".drone", "appveyor", ".appveyor"},
		DirNames: []string{"workflows", ".circleci", ".buildkite"},
	},
}

// Linter evaluates documentation rules against a directory.
type Linter struct {
	rules []Rule
}

var _ contract.DocLinter = &Linter{}

// New returns a linter for the given rules, or DefaultRules when none are given.
func New(rules ...Rule) *Linter {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Linter{rules: rules}
}

// Lint reports one check per rule, in rule order.
func (l *Linter) Lint(ctx context.Context, dir string) ([]schema.DocCheck, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "lint", Path: dir, Err: errors.New("not a directory")}
	}

	listings := make(map[string][]fs.DirEntry)
	checks := make([]schema.DocCheck, 0, len(l.rules))
	for _, rule := range l.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		present := false
		for _, sub := range rule.Dirs {
			entries, ok := listings[sub]
			if !ok {
				entries = readDir(filepath.Join(dir, sub))
				listings[sub] = entries
			}
			if matches(rule, filepath.Join(dir, sub), entries) {
				present = true
				break
			}
		}
		checks = append(checks, schema.DocCheck{Rule: rule.Name, Present: present})
	}
	return checks, nil
}

// readDir lists a directory, treating a missing or unreadable one as empty.
func readDir(path string) []fs.DirEntry {
	entries, err := os.ReadDir(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		contract.Logger.WithError(err).WithField("dir", path).Debug("Skipping unreadable directory")
	}
	return entries
}

func matches(rule Rule, parent string, entries []fs.DirEntry) bool {
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() {
			if slices.Contains(rule.DirNames, name) && !isEmptyDir(filepath.Join(parent, e.Name())) {
				return true
			}
			continue
		}
		if slices.Contains(rule.Stems, stem(name)) {
			return true
		}
	}
	return false
}

// stem strips the last extension, keeping dotfiles such as ".travis.yml" as ".travis".
func stem(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

func isEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	return err != nil || len(entries) == 0
}
