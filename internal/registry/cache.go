package registry

import (
	"os"
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/cachepath"
	"github.com/phpp-dev/phpp/internal/errs"
)

// MetadataCache is a disk-backed store of per-package metadata JSON,
// keyed by (registry, package) as spec §4.2 describes: one blob per
// pair under a per-user cache directory, named
// "provider-<vendor>-<name>.json", with the registry URL sanitized
// into its own subdirectory so switching registries can't poison the
// cache (spec §3 lifecycle).
type MetadataCache struct {
	root string // <cache-root>/repo
}

// NewMetadataCache opens the metadata cache rooted at <cacheRoot>/repo.
func NewMetadataCache(cacheRoot string) *MetadataCache {
	return &MetadataCache{root: filepath.Join(cacheRoot, "repo")}
}

func (c *MetadataCache) path(registryURL, name string) string {
	dir := filepath.Join(c.root, cachepath.SanitizeRegistryURL(registryURL))
	file := "provider-" + cachepath.SanitizePackageName(name) + ".json"
	return filepath.Join(dir, file)
}

// Exists reports whether a cached blob is present for (registry, name).
func (c *MetadataCache) Exists(registryURL, name string) bool {
	_, err := os.Stat(c.path(registryURL, name))
	return err == nil
}

// Read returns the cached blob for (registry, name).
func (c *MetadataCache) Read(registryURL, name string) ([]byte, error) {
	b, err := os.ReadFile(c.path(registryURL, name))
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "reading cached metadata for %s", name)
	}
	return b, nil
}

// Write stores body as the cached blob for (registry, name). Per spec
// §4.2, any successful body is cached unconditionally; a 404 must
// never reach this method.
func (c *MetadataCache) Write(registryURL, name string, body []byte) error {
	p := c.path(registryURL, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating metadata cache directory")
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing cached metadata for %s", name)
	}
	return nil
}

// Clear removes every cached metadata blob, across all registries.
// There is no TTL (spec §4.2): this is the only invalidation path.
func (c *MetadataCache) Clear() error {
	if err := os.RemoveAll(c.root); err != nil {
		return errs.Wrap(errs.LocalIo, err, "clearing metadata cache")
	}
	return nil
}
