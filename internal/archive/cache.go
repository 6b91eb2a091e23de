// Package archive manages the content-addressed archive cache and the
// zip extractor the installer drives (spec §4.5).
package archive

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/errs"
)

// Cache is a disk-backed store of downloaded archive blobs, keyed by
// <package-name>/<sha1-of-version>.zip under a per-user directory
// (spec §6's cache layout: "files/<vendor>/<name>/<sha1-of-version>.zip").
type Cache struct {
	root string // <cache-root>/files
}

// NewCache opens the archive cache rooted at <cacheRoot>/files.
func NewCache(cacheRoot string) *Cache {
	return &Cache{root: filepath.Join(cacheRoot, "files")}
}

func keyFor(version string) string {
	sum := sha1.Sum([]byte(version))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(name, version string) string {
	return filepath.Join(c.root, name, keyFor(version)+".zip")
}

// Exists reports whether the archive for (name, version) is already cached.
func (c *Cache) Exists(name, version string) bool {
	_, err := os.Stat(c.path(name, version))
	return err == nil
}

// Path returns the on-disk path an archive for (name, version) would
// live at, whether or not it currently exists.
func (c *Cache) Path(name, version string) string {
	return c.path(name, version)
}

// Write stores body as the archive for (name, version), writing to a
// temporary sibling file first and renaming into place so a reader
// never observes a partially-written archive.
func (c *Cache) Write(name, version string, body []byte) error {
	dest := c.path(name, version)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating archive cache directory for %s", name)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*.zip")
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating temp archive file for %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return errs.Wrap(errs.LocalIo, err, "writing archive for %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.LocalIo, err, "closing archive for %s", name)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errs.Wrap(errs.LocalIo, err, "moving archive into place for %s", name)
	}
	return nil
}

// Read returns the cached archive bytes for (name, version).
func (c *Cache) Read(name, version string) ([]byte, error) {
	body, err := os.ReadFile(c.path(name, version))
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "reading cached archive for %s", name)
	}
	return body, nil
}
