// Package autoload builds and emits the PSR-4, files, and static
// combined autoload maps (spec §4.6), and parses the PSR-4 file back
// into structured data (spec §4.7).
package autoload

import "github.com/armon/go-radix"

// Origin tags whether a path is relative to the vendor directory (a
// locked package's own autoload section) or the project base
// directory (the project manifest's own autoload section), per
// spec §4.6.
type Origin int

const (
	Vendor Origin = iota
	Base
)

// Dir is one PSR-4 namespace-prefix target directory, tagged with its origin.
type Dir struct {
	Origin Origin
	Path   string
}

// Psr4Map is the namespace-prefix -> ordered, duplicate-suppressed
// directory list map (spec §4.6). Prefix membership and lookup is
// backed by a radix tree, the same structure the teacher uses for its
// own prefix-keyed lookups (typed_radix.go's deducerTrie); insertion
// order of prefixes is not significant since prefixes are always
// re-sorted reverse-lexicographically on emission.
type Psr4Map struct {
	tree *radix.Tree
}

// NewPsr4Map returns an empty Psr4Map.
func NewPsr4Map() *Psr4Map {
	return &Psr4Map{tree: radix.New()}
}

// Add appends path under prefix, tagged with origin, suppressing an
// exact duplicate (same origin and path) already recorded for that
// prefix.
func (m *Psr4Map) Add(prefix string, origin Origin, path string) {
	existing, _ := m.tree.Get(prefix)
	dirs, _ := existing.([]Dir)
	for _, d := range dirs {
		if d.Origin == origin && d.Path == path {
			return
		}
	}
	m.tree.Insert(prefix, append(dirs, Dir{Origin: origin, Path: path}))
}

// Prefixes returns the map's namespace prefixes, sorted reverse
// lexicographically (spec §4.6, §5: longer/more specific prefixes first).
func (m *Psr4Map) Prefixes() []string {
	prefixes := make([]string, 0, m.tree.Len())
	m.tree.Walk(func(prefix string, _ interface{}) bool {
		prefixes = append(prefixes, prefix)
		return false
	})
	sortReverse(prefixes)
	return prefixes
}

// Dirs returns the directory list recorded for prefix, in insertion order.
func (m *Psr4Map) Dirs(prefix string) []Dir {
	v, ok := m.tree.Get(prefix)
	if !ok {
		return nil
	}
	return v.([]Dir)
}

func sortReverse(s []string) {
	// insertion sort is plenty for the handful of namespace prefixes a
	// real project declares; avoids pulling in sort.Slice's reflection
	// for such a small, frequently-called structure.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] < s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// FilesEntry is one files-map entry: the path the loader should
// require_once, tagged with its origin.
type FilesEntry struct {
	Origin Origin
	Path   string
}

// FilesMap is the sha1(path)-keyed files map (spec §4.6). Insertion
// order is preserved; a later insert with the same key overwrites the
// earlier entry in place.
type FilesMap struct {
	keys    []string
	entries map[string]FilesEntry
}

// NewFilesMap returns an empty FilesMap.
func NewFilesMap() *FilesMap {
	return &FilesMap{entries: make(map[string]FilesEntry)}
}

// Insert records path, relative to the directory its origin names
// (e.g. "/foo/bar/src/functions.php" for Vendor), under the SHA-1 hex
// of its project-absolute form ("/vendor/foo/bar/src/functions.php").
func (m *FilesMap) Insert(origin Origin, path string) {
	key := sha1Hex(path)
	if origin == Vendor {
		key = sha1Hex("/vendor" + path)
	}
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = FilesEntry{Origin: origin, Path: path}
}

// Keys returns the map's keys in insertion order.
func (m *FilesMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the entry recorded for key.
func (m *FilesMap) Get(key string) (FilesEntry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// insertWithKey records an entry under an already-known key, used by
// ParseFiles when reading back a previously-emitted files map whose
// keys were computed once at emission time rather than recomputed
// from the path.
func (m *FilesMap) insertWithKey(key string, origin Origin, path string) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = FilesEntry{Origin: origin, Path: path}
}
