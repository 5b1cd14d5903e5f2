package classify

import (
	"sync"
	"testing"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDefaults(t *testing.T) {
	c := New()
	tests := []struct {
		name     string
		filename string
		expected schema.FileCategory
	}{
		{"go source", "main.go", schema.Programming},
		{"nested python", "pkg/sub/util.py", schema.Programming},
		{"upper case extension", "SRC/APP.PY", schema.Programming},
		{"windows separators", `docs\guide\intro.rst`, schema.Prose},
		{"html", "web/index.html", schema.Markup},
		{"yaml", ".github/workflows/ci.yml", schema.Data},
		{"exact dockerfile", "build/Dockerfile", schema.Programming},
		{"exact makefile", "Makefile", schema.Programming},
		{"exact license", "LICENSE", schema.Prose},
		{"exact go.mod", "go.mod", schema.Data},
		{"dotfile exact", ".gitignore", schema.Data},
		{"exact beats extension", "CMakeLists.txt", schema.Programming},
		{"requirements beats txt", "requirements.txt", schema.Data},
		{"plain txt", "notes.txt", schema.Prose},
		{"no extension", "somebinary", schema.Unknown},
		{"unknown extension", "archive.tar.gz", schema.Unknown},
		{"trailing dot", "weird.", schema.Unknown},
		{"empty", "", schema.Unknown},
		{"dot", ".", schema.Unknown},
		{"directory only", "dir/", schema.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.filename))
		})
	}
}

func TestClassifyTieBreak(t *testing.T) {
	c := New(WithoutCache())
	assert.Equal(t, schema.Prose, c.Classify("README.md"), "prose wins over programming")
	assert.Equal(t, schema.Data, c.Classify("schema.sql"), "data wins over programming")
	assert.Equal(t, schema.Markup, c.Classify("thesis.cls"), "markup wins over programming")
	assert.Equal(t, schema.Data, c.Classify("project.pro"), "data wins over programming")
}

func TestClassifyCustomRules(t *testing.T) {
	rules := RuleSet{
		ExactNames: []Rule{
			{Pattern: "BUILD", Category: schema.Programming},
			{Pattern: "build", Category: schema.Data},
			{Pattern: "only", Category: schema.Markup},
			{Pattern: "only", Category: schema.Markup},
		},
		Extensions: []Rule{
			{Pattern: ".x", Category: schema.Programming},
			{Pattern: ".x", Category: schema.Markup},
			{Pattern: ".y", Category: schema.Data},
		},
	}
	c := New(WithRules(rules), WithoutCache())

	t.Run("ambiguous exact without extension is unknown", func(t *testing.T) {
		assert.Equal(t, schema.Unknown, c.Classify("BUILD"))
	})
	t.Run("ambiguous exact falls through to extension", func(t *testing.T) {
		withExt := New(WithoutCache(), WithRules(RuleSet{
			ExactNames: []Rule{
				{Pattern: "build.y", Category: schema.Programming},
				{Pattern: "build.y", Category: schema.Prose},
			},
			Extensions: []Rule{{Pattern: ".y", Category: schema.Data}},
		}))
		assert.Equal(t, schema.Data, withExt.Classify("BUILD.y"))
	})
	t.Run("duplicate rows collapse", func(t *testing.T) {
		assert.Equal(t, schema.Markup, c.Classify("only"))
	})
	t.Run("extension tie", func(t *testing.T) {
		assert.Equal(t, schema.Markup, c.Classify("a.x"))
	})
	t.Run("default tables replaced", func(t *testing.T) {
		assert.Equal(t, schema.Unknown, c.Classify("main.go"))
		assert.Equal(t, schema.Data, c.Classify("b.y"))
	})
}

type countingCache struct {
	mu   sync.Mutex
	data map[string]schema.FileCategory
	hits int
	adds int
}

func (c *countingCache) Get(key string) (schema.FileCategory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *countingCache) Add(key string, value schema.FileCategory) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.adds++
	return false
}

func TestClassifyMemoization(t *testing.T) {
	cache := &countingCache{data: map[string]schema.FileCategory{}}
	c := New(WithCache(cache))

	for range 3 {
		assert.Equal(t, schema.Programming, c.Classify("a/b.go"))
	}
	assert.Equal(t, 1, cache.adds)
	assert.Equal(t, 2, cache.hits)
}

func TestClassifyCacheTransparent(t *testing.T) {
	cached := New()
	uncached := New(WithoutCache())
	small := New(WithCacheSize(2))

	names := []string{"a.go", "README.md", "x.sql", "Dockerfile", "q.unknown", "a.go", "c.css", "README.md"}
	for _, n := range names {
		expected := uncached.Classify(n)
		assert.Equal(t, expected, cached.Classify(n), n)
		assert.Equal(t, expected, small.Classify(n), n)
	}
	assert.Equal(t, uncached.ClassifyAll(names), cached.ClassifyAll(names))
}

func TestClassifyConcurrent(t *testing.T) {
	c := New(WithCacheSize(8))
	names := []string{"a.go", "b.md", "c.json", "d.html", "e", "f.sql"}
	expected := New(WithoutCache()).ClassifyAll(names)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, expected, c.ClassifyAll(names))
			}
		}()
	}
	wg.Wait()
}
