package history

import "github.com/huangsam/repostats/schema"

// FileClassifier assigns a category to a filename.
type FileClassifier interface {
	Classify(filename string) schema.FileCategory
}

// Normalize builds the per-file delta table and the per-commit summary table.
// Both tables keep the input commit order; deltas keep file order within a commit.
// A commit without file changes yields a summary with all counters at zero.
func Normalize(commits []schema.CommitRecord, classifier FileClassifier) schema.History {
	h := schema.History{
		Deltas:    make([]schema.PerFileCommitDelta, 0, len(commits)),
		Summaries: make([]schema.CommitSummary, 0, len(commits)),
	}
	for _, c := range commits {
		meta := metaOf(c)
		summary := schema.CommitSummary{CommitMeta: meta}
		for _, f := range c.Files {
			cat := classifier.Classify(f.Path)
			lines := f.Lines
			if lines == 0 {
				lines = f.Insertions + f.Deletions
			}
			h.Deltas = append(h.Deltas, schema.PerFileCommitDelta{
				CommitMeta:   meta,
				Filename:     f.Path,
				Category:     cat,
				Additions:    f.Insertions,
				Deletions:    f.Deletions,
				LinesChanged: lines,
			})
			summary.AddChange(cat, f.Insertions, f.Deletions, lines)
		}
		h.Summaries = append(h.Summaries, summary)
	}
	return h
}

func metaOf(c schema.CommitRecord) schema.CommitMeta {
	return schema.CommitMeta{
		Hash:        c.Hash,
		Message:     c.Message,
		AuthoredAt:  c.AuthoredAt,
		CommittedAt: c.CommittedAt,
		Author:      c.Author,
		Committer:   c.Committer,
	}
}

// keepCommits filters both tables by a predicate over commit metadata.
// It returns the filtered history and the number of commits dropped.
func keepCommits(h schema.History, keep func(schema.CommitMeta) bool) (schema.History, int) {
	kept := make(map[string]bool, len(h.Summaries))
	out := schema.History{
		Deltas:    make([]schema.PerFileCommitDelta, 0, len(h.Deltas)),
		Summaries: make([]schema.CommitSummary, 0, len(h.Summaries)),
	}
	removed := 0
	for _, s := range h.Summaries {
		if keep(s.CommitMeta) {
			kept[s.Hash] = true
			out.Summaries = append(out.Summaries, s)
		} else {
			removed++
		}
	}
	for _, d := range h.Deltas {
		if kept[d.Hash] {
			out.Deltas = append(out.Deltas, d)
		}
	}
	return out, removed
}

// ContributorCount returns the number of distinct contributor identities.
// Commits with an empty identity are grouped together.
func ContributorCount(summaries []schema.CommitSummary, column schema.ContributorColumn) int {
	seen := make(map[string]struct{})
	for _, s := range summaries {
		seen[column.Identity(s.CommitMeta)] = struct{}{}
	}
	return len(seen)
}
