// Package classify assigns a content category to file paths.
package classify

import (
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/repostats/schema"
)

// DefaultCacheSize is the number of distinct filenames memoized by default.
const DefaultCacheSize = 1 << 14

// Cache memoizes classification results keyed by lowercased base name.
// It must be safe for concurrent use.
type Cache interface {
	Get(key string) (schema.FileCategory, bool)
	Add(key string, value schema.FileCategory) bool
}

var _ Cache = &lru.Cache[string, schema.FileCategory]{} // Compile-time check

// Classifier maps filenames to categories using exact-name and extension tables.
// A Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	exact map[string][]schema.FileCategory
	ext   map[string][]schema.FileCategory
	cache Cache
}

type options struct {
	rules     RuleSet
	cache     Cache
	cacheSize int
}

// Option configures a Classifier.
type Option func(*options)

// WithRules replaces the built-in rule tables.
func WithRules(rules RuleSet) Option {
	return func(o *options) { o.rules = rules }
}

// WithCache uses the given cache instead of an internal LRU.
func WithCache(c Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithCacheSize sets the LRU size. Zero or less disables memoization.
func WithCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = size }
}

// WithoutCache disables memoization.
func WithoutCache() Option {
	return func(o *options) {
		o.cache = nil
		o.cacheSize = 0
	}
}

// New builds a classifier from the default rules unless overridden.
func New(opts ...Option) *Classifier {
	o := &options{rules: DefaultRules(), cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(o)
	}
	c := &Classifier{
		exact: index(o.rules.ExactNames),
		ext:   index(o.rules.Extensions),
		cache: o.cache,
	}
	if c.cache == nil && o.cacheSize > 0 {
		if l, err := lru.New[string, schema.FileCategory](o.cacheSize); err == nil {
			c.cache = l
		}
	}
	return c
}

// index groups rules by pattern, keeping each category once per pattern.
func index(rules []Rule) map[string][]schema.FileCategory {
	out := make(map[string][]schema.FileCategory, len(rules))
	for _, r := range rules {
		key := strings.ToLower(r.Pattern)
		found := false
		for _, existing := range out[key] {
			if existing == r.Category {
				found = true
				break
			}
		}
		if !found {
			out[key] = append(out[key], r.Category)
		}
	}
	return out
}

// Classify returns the category of a filename. It never fails: names that
// match no rule are Unknown.
//
// The base name is looked up in the exact-name table first. Only when that
// yields nothing, or several categories, is the extension table consulted.
// Multiple matching categories resolve as prose > data > markup > programming.
func (c *Classifier) Classify(filename string) schema.FileCategory {
	base := strings.ToLower(baseName(filename))
	if c.cache != nil {
		if cat, ok := c.cache.Get(base); ok {
			return cat
		}
	}
	cat := c.classify(base)
	if c.cache != nil {
		c.cache.Add(base, cat)
	}
	return cat
}

// classify resolves a lowercased base name against the rule tables.
func (c *Classifier) classify(base string) schema.FileCategory {
	if base == "" {
		return schema.Unknown
	}

	exact := c.exact[base]
	if len(exact) == 1 {
		return exact[0]
	}

	ext := extension(base)
	if ext != "" {
		if matches := c.ext[ext]; len(matches) > 0 {
			return resolve(matches)
		}
	}
	return schema.Unknown
}

// ClassifyAll returns a category per filename, in input order.
func (c *Classifier) ClassifyAll(filenames []string) []schema.FileCategory {
	out := make([]schema.FileCategory, len(filenames))
	for i, f := range filenames {
		out[i] = c.Classify(f)
	}
	return out
}

// resolve picks a single category out of several matches.
func resolve(matches []schema.FileCategory) schema.FileCategory {
	if len(matches) == 1 {
		return matches[0]
	}
	for _, preferred := range schema.CategoryPriority {
		for _, m := range matches {
			if m == preferred {
				return m
			}
		}
	}
	return schema.Unknown
}

// baseName strips directories with either separator.
func baseName(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = strings.TrimRight(filename, "/")
	if filename == "" {
		return ""
	}
	return path.Base(filename)
}

// extension returns the final dot suffix, or "" for dotfiles and names without one.
func extension(base string) string {
	idx := strings.LastIndex(base, ".")
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return base[idx:]
}
