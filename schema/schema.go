// Package schema has the models, enumerations and errors shared by all parts of repostats.
package schema

import "time"

// Identity is a commit actor. Empty fields mean the value was not recorded.
type Identity struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// FileChange holds the diff statistics git reports for one file in one commit.
type FileChange struct {
	Path       string `json:"path"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
	Lines      int    `json:"lines"`
}

// CommitRecord is one raw commit as supplied by the commit history provider.
type CommitRecord struct {
	Hash        string       `json:"hash"`
	Message     string       `json:"message"`
	AuthoredAt  time.Time    `json:"authored_at"`
	CommittedAt time.Time    `json:"committed_at"`
	Author      Identity     `json:"author"`
	Committer   Identity     `json:"committer"`
	Files       []FileChange `json:"files"` // in the order git listed them
}

// CommitMeta holds the identity and timestamp fields shared by both normalized tables.
type CommitMeta struct {
	Hash        string    `json:"hash"`
	Message     string    `json:"message"`
	AuthoredAt  time.Time `json:"authored_at"`
	CommittedAt time.Time `json:"committed_at"`
	Author      Identity  `json:"author"`
	Committer   Identity  `json:"committer"`
}

// PerFileCommitDelta is one row per (commit, file) pair.
type PerFileCommitDelta struct {
	CommitMeta
	Filename     string       `json:"filename"`
	Category     FileCategory `json:"category"`
	Additions    int          `json:"additions"`
	Deletions    int          `json:"deletions"`
	LinesChanged int          `json:"lines_changed"`
}

// ChangeCounts is the counter group kept for total and for each category.
type ChangeCounts struct {
	FilesChanged int `json:"files_changed"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	LinesChanged int `json:"lines_changed"`
}

// Add returns the element-wise sum of both counter groups.
func (c ChangeCounts) Add(other ChangeCounts) ChangeCounts {
	return ChangeCounts{
		FilesChanged: c.FilesChanged + other.FilesChanged,
		Additions:    c.Additions + other.Additions,
		Deletions:    c.Deletions + other.Deletions,
		LinesChanged: c.LinesChanged + other.LinesChanged,
	}
}

// CommitSummary is the per-commit roll-up.
// Total always equals the sum of the five category groups.
type CommitSummary struct {
	CommitMeta
	Total       ChangeCounts `json:"total"`
	Programming ChangeCounts `json:"programming"`
	Markup      ChangeCounts `json:"markup"`
	Prose       ChangeCounts `json:"prose"`
	Data        ChangeCounts `json:"data"`
	Unknown     ChangeCounts `json:"unknown"`
}

// Counts returns the counter group for a subset.
func (s *CommitSummary) Counts(subset Subset) ChangeCounts {
	switch subset {
	case TotalSubset:
		return s.Total
	case ProgrammingSubset:
		return s.Programming
	case MarkupSubset:
		return s.Markup
	case ProseSubset:
		return s.Prose
	case DataSubset:
		return s.Data
	default:
		return s.Unknown
	}
}

// countsFor returns a pointer to the category counter group.
func (s *CommitSummary) countsFor(cat FileCategory) *ChangeCounts {
	switch cat {
	case Programming:
		return &s.Programming
	case Markup:
		return &s.Markup
	case Prose:
		return &s.Prose
	case Data:
		return &s.Data
	default:
		return &s.Unknown
	}
}

// AddChange folds one classified file change into the total and category counters.
func (s *CommitSummary) AddChange(cat FileCategory, additions, deletions, lines int) {
	delta := ChangeCounts{FilesChanged: 1, Additions: additions, Deletions: deletions, LinesChanged: lines}
	s.Total = s.Total.Add(delta)
	group := s.countsFor(cat)
	*group = group.Add(delta)
}

// Timestamp returns the value of the chosen timestamp column.
func (c DatetimeColumn) Timestamp(m CommitMeta) time.Time {
	if c == CommittedDatetime {
		return m.CommittedAt
	}
	return m.AuthoredAt
}

// Identity returns the grouping key of the chosen contributor column.
func (c ContributorColumn) Identity(m CommitMeta) string {
	if c == CommitterName {
		return m.Committer.Name
	}
	return m.Author.Name
}

// History is the pair of aligned tables produced by normalization.
type History struct {
	Deltas    []PerFileCommitDelta `json:"deltas"`
	Summaries []CommitSummary      `json:"summaries"`
}
