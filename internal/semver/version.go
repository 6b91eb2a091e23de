// Package semver normalizes Composer-style version and constraint
// strings and evaluates constraint satisfaction against them.
//
// Version arithmetic (comparison, component access) is delegated to
// github.com/Masterminds/semver's *semver.Version; this package layers
// the PHP/Composer ecosystem's own normalization and constraint
// grammar (caret, tilde, hyphen ranges, "||"/"|" alternation, the
// escaped >/< quirk) on top, since Composer's grammar is not the same
// as the grammar Masterminds/semver's own NewConstraint understands.
package semver

import (
	"strings"

	mmsemver "github.com/Masterminds/semver"
	"github.com/phpp-dev/phpp/internal/errs"
)

// Version is a normalized Composer version.
type Version struct {
	v        *mmsemver.Version
	original string
}

// String returns the normalized version string (no leading v, padded
// to major.minor.patch).
func (ver Version) String() string {
	return ver.v.String()
}

// Original returns the exact string ParseVersion was called with.
func (ver Version) Original() string {
	return ver.original
}

// Stable reports whether the version carries no pre-release tag.
func (ver Version) Stable() bool {
	return ver.v.Prerelease() == ""
}

// Compare returns -1, 0, or 1 depending on whether ver is less than,
// equal to, or greater than other.
func (ver Version) Compare(other Version) int {
	return ver.v.Compare(other.v)
}

// normalizeVersionString strips a leading v/V, strips any build-metadata
// suffix (+...), and pads a bare major.minor to major.minor.0.
func normalizeVersionString(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		s = s[1:]
	}
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	// Pad "major.minor" (optionally with a "-pre" suffix) to "major.minor.0".
	core, rest := s, ""
	if i := strings.IndexByte(s, '-'); i >= 0 {
		core, rest = s[:i], s[i:]
	}
	if strings.Count(core, ".") == 1 {
		core += ".0"
	} else if !strings.Contains(core, ".") && core != "" {
		core += ".0.0"
	}
	return core + rest
}

// ParseVersion normalizes and parses a Composer version string.
func ParseVersion(s string) (Version, error) {
	norm := normalizeVersionString(s)
	v, err := mmsemver.NewVersion(norm)
	if err != nil {
		return Version{}, errs.Wrap(errs.MalformedVersion, err, "parsing version %q", s)
	}
	return Version{v: v, original: s}, nil
}
