package tree

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Probe is a read-only view of a tree used while planning.
type Probe interface {
	Exists(path string) bool
	Read(path string) (string, bool)
}

// Contains reports whether path exists and contains text.
func Contains(p Probe, path, text string) bool {
	content, ok := p.Read(path)

	return ok && strings.Contains(content, text)
}

// DefaultProbeCacheSize bounds the number of file contents a CachedProbe keeps.
const DefaultProbeCacheSize = 128

type probeEntry struct {
	content string
	ok      bool
}

// CachedProbe answers probe queries from a Tree and memoizes file reads.
// It must only be used while the tree is not being modified.
type CachedProbe struct {
	tree  *Tree
	cache *lru.Cache[string, probeEntry]
}

// NewCachedProbe returns a probe over t keeping up to size file reads.
func NewCachedProbe(t *Tree, size int) *CachedProbe {
	if size <= 0 {
		size = DefaultProbeCacheSize
	}

	cache, err := lru.New[string, probeEntry](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}

	return &CachedProbe{tree: t, cache: cache}
}

// Exists reports whether path exists.
func (p *CachedProbe) Exists(path string) bool {
	if entry, ok := p.cache.Get(clean(path)); ok && entry.ok {
		return true
	}

	return p.tree.Exists(path)
}

// Read returns the contents of path and whether it could be read.
func (p *CachedProbe) Read(path string) (string, bool) {
	key := clean(path)

	if entry, ok := p.cache.Get(key); ok {
		return entry.content, entry.ok
	}

	data, err := p.tree.ReadFile(key)
	entry := probeEntry{content: string(data), ok: err == nil}
	p.cache.Add(key, entry)

	return entry.content, entry.ok
}

// Len returns the number of cached reads.
func (p *CachedProbe) Len() int {
	return p.cache.Len()
}

// MapProbe is a Probe over an in-memory map of path to content.
type MapProbe map[string]string

// Exists reports whether path is in the map, either as a file or as a
// directory prefix of one.
func (m MapProbe) Exists(path string) bool {
	key := clean(path)
	if _, ok := m[key]; ok {
		return true
	}

	for name := range m {
		if strings.HasPrefix(name, key+"/") {
			return true
		}
	}

	return false
}

// Read returns the content stored for path.
func (m MapProbe) Read(path string) (string, bool) {
	content, ok := m[clean(path)]

	return content, ok
}
