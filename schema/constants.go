package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and tracking.
	DatabaseBackend string

	// FileCategory is the content type assigned to a filename.
	FileCategory string

	// Subset selects one of the per-commit counter groups: total or a category.
	Subset string

	// ContributorColumn selects which identity groups commits into contributors.
	ContributorColumn string

	// DatetimeColumn selects which commit timestamp drives windowing and scoping.
	DatetimeColumn string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// File categories. Unknown is the catch-all.
const (
	Programming FileCategory = "programming"
	Markup      FileCategory = "markup"
	Prose       FileCategory = "prose"
	Data        FileCategory = "data"
	Unknown     FileCategory = "unknown"
)

// Subsets used as key prefixes and series selectors.
const (
	TotalSubset       Subset = "total"
	ProgrammingSubset Subset = Subset(Programming)
	MarkupSubset      Subset = Subset(Markup)
	ProseSubset       Subset = Subset(Prose)
	DataSubset        Subset = Subset(Data)
	UnknownSubset     Subset = Subset(Unknown)
)

// Contributor identity columns.
const (
	AuthorName    ContributorColumn = "author_name" // default
	CommitterName ContributorColumn = "committer_name"
)

// Timestamp columns.
const (
	AuthoredDatetime  DatetimeColumn = "authored_datetime" // default
	CommittedDatetime DatetimeColumn = "committed_datetime"
)

// AllCategories lists every file category in a stable order.
var AllCategories = []FileCategory{Programming, Markup, Prose, Data, Unknown}

// CategoryPriority is the tie-break order when a filename matches several categories.
var CategoryPriority = []FileCategory{Prose, Data, Markup, Programming}

// AllSubsets lists total followed by every category, the order used for result keys.
var AllSubsets = []Subset{TotalSubset, ProgrammingSubset, MarkupSubset, ProseSubset, DataSubset, UnknownSubset}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidContributorColumns lists the accepted contributor identity columns.
var ValidContributorColumns = map[ContributorColumn]struct{}{
	AuthorName:    {},
	CommitterName: {},
}

// ValidDatetimeColumns lists the accepted timestamp columns.
var ValidDatetimeColumns = map[DatetimeColumn]struct{}{
	AuthoredDatetime:  {},
	CommittedDatetime: {},
}

// Subset returns the counter subset backing this category.
func (c FileCategory) Subset() Subset {
	return Subset(c)
}
