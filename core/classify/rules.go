package classify

import "github.com/huangsam/repostats/schema"

// Rule maps one lowercased exact filename or extension to a category.
// Several rules may share a pattern; the classifier resolves the overlap.
type Rule struct {
	Pattern  string
	Category schema.FileCategory
}

// RuleSet is the pair of lookup tables consulted by the classifier.
type RuleSet struct {
	ExactNames []Rule
	Extensions []Rule
}

func rulesFor(cat schema.FileCategory, patterns ...string) []Rule {
	out := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, Rule{Pattern: p, Category: cat})
	}
	return out
}

// DefaultRules returns the built-in tables, derived from the language registry
// used by GitHub's linguist. Extensions listed by languages of different types
// appear once per type (.md, .sql, .cls, .inc, .pro).
func DefaultRules() RuleSet {
	var rs RuleSet

	rs.ExactNames = append(rs.ExactNames, rulesFor(schema.Programming,
		"dockerfile", "containerfile", "makefile", "gnumakefile", "bsdmakefile",
		"cmakelists.txt", "gemfile", "rakefile", "podfile", "vagrantfile",
		"jenkinsfile", "pkgbuild", "justfile", "snakefile", "brewfile",
		"guardfile", "fastfile", "appfile", "procfile", "build.bazel", "workspace",
		".bashrc", ".bash_profile", ".zshrc", ".profile", ".vimrc", ".gvimrc",
	)...)
	rs.ExactNames = append(rs.ExactNames, rulesFor(schema.Data,
		"go.mod", "go.sum", "go.work", "go.work.sum", "cargo.lock", "poetry.lock",
		"pipfile", "pipfile.lock", "gemfile.lock", "yarn.lock", "composer.lock",
		"requirements.txt", "codeowners", ".gitignore", ".gitattributes",
		".gitmodules", ".dockerignore", ".editorconfig", ".npmrc", ".env",
		".babelrc", ".eslintrc", ".prettierrc", ".mailmap",
	)...)
	rs.ExactNames = append(rs.ExactNames, rulesFor(schema.Prose,
		"license", "licence", "copying", "copyright", "readme", "authors",
		"contributors", "changelog", "changes", "news", "notice", "install",
		"todo", "patents", "thanks", "history",
	)...)

	rs.Extensions = append(rs.Extensions, rulesFor(schema.Programming,
		".py", ".pyw", ".pyi", ".pyx", ".go", ".rs", ".c", ".h", ".cc", ".cpp",
		".cxx", ".hpp", ".hh", ".hxx", ".cs", ".java", ".kt", ".kts", ".scala",
		".sc", ".groovy", ".gradle", ".js", ".mjs", ".cjs", ".jsx", ".ts",
		".tsx", ".rb", ".rake", ".gemspec", ".php", ".pl", ".pm", ".sh",
		".bash", ".zsh", ".fish", ".ps1", ".psm1", ".bat", ".cmd", ".lua",
		".r", ".jl", ".swift", ".m", ".mm", ".dart", ".ex", ".exs", ".erl",
		".hrl", ".hs", ".lhs", ".ml", ".mli", ".fs", ".fsx", ".fsi", ".clj",
		".cljs", ".cljc", ".el", ".lisp", ".scm", ".rkt", ".vb", ".vbs",
		".pas", ".f", ".f90", ".f95", ".for", ".asm", ".s", ".nim", ".zig",
		".v", ".sv", ".vhd", ".vhdl", ".cu", ".cuh", ".cmake", ".mk", ".mak",
		".tf", ".hcl", ".sol", ".elm", ".purs", ".coffee", ".awk", ".tcl",
		".d", ".cr", ".hx", ".adb", ".ads", ".cob", ".cbl", ".nix", ".ino",
		".thrift", ".xsl", ".xslt", ".vim", ".dockerfile", ".pro", ".inc",
		// shared with languages of other types
		".md", ".sql", ".cls",
	)...)
	rs.Extensions = append(rs.Extensions, rulesFor(schema.Markup,
		".html", ".htm", ".xhtml", ".css", ".scss", ".sass", ".less", ".styl",
		".vue", ".svelte", ".tex", ".ltx", ".sty", ".cls", ".haml", ".pug",
		".jade", ".mustache", ".hbs", ".handlebars", ".jinja", ".j2", ".twig",
		".erb", ".ejs", ".liquid", ".ipynb", ".bib", ".1", ".man", ".roff",
	)...)
	rs.Extensions = append(rs.Extensions, rulesFor(schema.Data,
		".json", ".jsonc", ".json5", ".jsonl", ".geojson", ".yaml", ".yml",
		".toml", ".csv", ".tsv", ".xml", ".xsd", ".plist", ".svg", ".ini",
		".cfg", ".properties", ".proto", ".graphql", ".gql", ".sql", ".edn",
		".lock", ".pro",
	)...)
	rs.Extensions = append(rs.Extensions, rulesFor(schema.Prose,
		".md", ".markdown", ".mdown", ".mkd", ".mdx", ".rst", ".txt", ".text",
		".adoc", ".asciidoc", ".org", ".textile", ".rdoc", ".pod", ".wiki",
		".mediawiki", ".creole",
	)...)

	return rs
}
