// Package resolver implements the recursive, memoizing dependency walk
// described in spec §4.4: given a root requirement, it fetches
// metadata through the registry client (consulting the metadata
// cache), selects a version per package, and recurses into that
// version's own requirements, accumulating a locked set and any
// platform-requirement violations along the way.
package resolver

import (
	"sync"

	"github.com/phpp-dev/phpp/internal/registry"
)

// VersionViolation records a runtime-version requirement that the
// detected PHP runtime does not satisfy (spec §3, §7).
type VersionViolation struct {
	CulpritName    string
	CulpritVersion string
	Constraint     string
}

// ExtensionViolation records a missing PHP extension requirement
// (spec §3, §7).
type ExtensionViolation struct {
	CulpritName    string
	CulpritVersion string
	Extension      string
	Constraint     string
}

// LockedPackage is one resolved, selected version in the locked set.
type LockedPackage struct {
	Name    string
	Version string
	Record  registry.VersionRecord
}

// Context is the process-scoped, mutable resolution context threaded
// through the recursive walk (spec §3's "Resolution context").
//
// The source this tool is modeled on threads a mutex-wrapped context
// through an async recursion purely as an artifact of that recursion's
// signature (spec §9's design note); phpp's resolution is strictly
// sequential (spec §5), so Context needs no real locking. The mutex
// below exists only so Context's methods present a safe API if a
// caller ever does call them from more than one goroutine (e.g. a
// future parallel prefetch of sibling subtrees); today nothing does.
type Context struct {
	mu sync.Mutex

	Locked  []LockedPackage
	visited map[string]bool

	// FirstPackage holds the top-level selection made for a root
	// requirement that carried no explicit constraint ("*"), so the
	// orchestrator can pin the manifest to the concrete version chosen
	// (spec §4.4 step 4, §4.9 install's manifest rewrite).
	FirstPackage *LockedPackage

	RuntimeVersion    string
	RuntimeExtensions map[string]bool

	VersionViolations   []VersionViolation
	ExtensionViolations []ExtensionViolation

	RegistryBaseURL string
}

// NewContext creates a fresh resolution context for one command
// invocation (spec §3 lifecycle).
func NewContext(registryBaseURL, runtimeVersion string, runtimeExtensions []string) *Context {
	exts := make(map[string]bool, len(runtimeExtensions))
	for _, e := range runtimeExtensions {
		exts[e] = true
	}
	return &Context{
		visited:           make(map[string]bool),
		RuntimeVersion:    runtimeVersion,
		RuntimeExtensions: exts,
		RegistryBaseURL:   registryBaseURL,
	}
}

// Visited reports whether name has already been resolved or is
// currently being resolved higher in the stack (cycle/duplicate guard,
// spec §4.4 step 1).
func (c *Context) Visited(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visited[name]
}

// MarkVisited records name as visited and appends lp to the locked
// set, preserving insertion order (spec §3 invariant, §5 ordering
// guarantee).
func (c *Context) MarkVisited(name string, lp LockedPackage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visited[name] = true
	c.Locked = append(c.Locked, lp)
}

// AddVersionViolation records a runtime-version mismatch.
func (c *Context) AddVersionViolation(v VersionViolation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.VersionViolations = append(c.VersionViolations, v)
}

// AddExtensionViolation records a missing-extension mismatch.
func (c *Context) AddExtensionViolation(v ExtensionViolation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExtensionViolations = append(c.ExtensionViolations, v)
}
