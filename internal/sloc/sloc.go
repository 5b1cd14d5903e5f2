// Package sloc counts source lines with gocloc.
package sloc

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hhatto/gocloc"
	"github.com/huangsam/repostats/internal/contract"
	"github.com/huangsam/repostats/schema"
)

// Counter counts code and comment lines per file.
type Counter struct {
	languages *gocloc.DefinedLanguages
}

var _ contract.SLOCCounter = &Counter{}

// NewCounter returns a counter that recognizes every gocloc language.
func NewCounter() *Counter {
	return &Counter{languages: gocloc.NewDefinedLanguages()}
}

// Count walks dir and returns one entry per recognized file, sorted by path.
// Paths are relative to dir and use forward slashes.
func (c *Counter) Count(ctx context.Context, dir string) ([]schema.SLOCFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processor := gocloc.NewProcessor(c.languages, gocloc.NewClocOptions())
	result, err := processor.Analyze([]string{dir})
	if err != nil {
		return nil, fmt.Errorf("count lines in %s: %w", dir, err)
	}

	files := make([]schema.SLOCFile, 0, len(result.Files))
	for name, f := range result.Files {
		files = append(files, schema.SLOCFile{
			Path:     relativePath(dir, name),
			Code:     int(f.Code),
			Comments: int(f.Comments),
		})
	}
	slices.SortFunc(files, func(a, b schema.SLOCFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, ctx.Err()
}

func relativePath(dir, name string) string {
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(rel)
}

// Summarize folds per-file counts into per-subset totals, classifying each path.
// Every subset is present in the result, zero when no file matched.
func Summarize(files []schema.SLOCFile, classify func(string) schema.FileCategory) schema.SLOCMetrics {
	m := schema.SLOCMetrics{
		LinesOfCode:     make(map[schema.Subset]int, len(schema.AllSubsets)),
		LinesOfComments: make(map[schema.Subset]int, len(schema.AllSubsets)),
	}
	for _, s := range schema.AllSubsets {
		m.LinesOfCode[s] = 0
		m.LinesOfComments[s] = 0
	}
	for _, f := range files {
		subset := classify(f.Path).Subset()
		m.LinesOfCode[schema.TotalSubset] += f.Code
		m.LinesOfComments[schema.TotalSubset] += f.Comments
		m.LinesOfCode[subset] += f.Code
		m.LinesOfComments[subset] += f.Comments
	}
	return m
}
