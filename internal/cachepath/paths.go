// Package cachepath resolves the per-user cache and config roots
// (spec §6) and the sanitization rules used to turn a registry URL or
// package name into a filesystem-safe path component.
package cachepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// Home returns the current user's home directory, or a NoHome error if
// it cannot be determined (spec §7).
func Home() (string, error) {
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		return "", errs.Wrap(errs.NoHome, err, "locating home directory")
	}
	return h, nil
}

// CacheRoot returns "<home>/.cache/phpp".
func CacheRoot() (string, error) {
	h, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".cache", "phpp"), nil
}

// ConfigRoot returns "<home>/.config/phpp".
func ConfigRoot() (string, error) {
	h, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".config", "phpp"), nil
}

// SanitizeRegistryURL replaces ':' and '/' in a registry base URL with
// '-', matching spec §6's cache layout rule.
func SanitizeRegistryURL(url string) string {
	r := strings.NewReplacer(":", "-", "/", "-")
	return r.Replace(url)
}

// SanitizePackageName replaces '/' in a package name with '-', for use
// in the metadata cache's provider-<vendor>-<name>.json filename.
func SanitizePackageName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
