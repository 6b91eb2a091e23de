// Package lockfile reads and writes composer.lock (spec §4.8): the
// resolved set serialized as a name-sorted JSON array of version
// records, plus the set-difference diff used by the remove flow.
package lockfile

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/phpp-dev/phpp/internal/errs"
	"github.com/phpp-dev/phpp/internal/registry"
)

// FileName is the lockfile's fixed filename.
const FileName = "composer.lock"

// Lockfile is the decoded form of composer.lock.
type Lockfile struct {
	Packages []registry.VersionRecord
}

type rawLockfile struct {
	Packages []registry.VersionRecord `json:"packages"`
}

// New returns an empty lockfile.
func New() *Lockfile {
	return &Lockfile{}
}

// FromLocked builds a Lockfile from a resolver's locked set, sorted by
// name (spec §5's ordering guarantee: insertion order during
// resolution, sorted before serialization).
func FromLocked(records []registry.VersionRecord) *Lockfile {
	sorted := make([]registry.VersionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Lockfile{Packages: sorted}
}

// Load reads composer.lock from path. A missing file yields an empty
// lockfile, not an error (there is nothing to diff against yet).
func Load(path string) (*Lockfile, error) {
	body, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "reading %s", path)
	}
	return Parse(body)
}

// Parse decodes composer.lock's bytes.
func Parse(body []byte) (*Lockfile, error) {
	var raw rawLockfile
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "parsing lockfile JSON")
	}
	return &Lockfile{Packages: raw.Packages}, nil
}

// Marshal renders the lockfile back to indented JSON, packages sorted
// by name (spec §8 invariant 3: stable under re-serialization).
func (l *Lockfile) Marshal() ([]byte, error) {
	sorted := make([]registry.VersionRecord, len(l.Packages))
	copy(sorted, l.Packages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rawLockfile{Packages: sorted}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the lockfile to path.
func (l *Lockfile) Save(path string) error {
	body, err := l.Marshal()
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "encoding lockfile")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing %s", path)
	}
	return nil
}

// Names returns the set of package names present in the lockfile.
func (l *Lockfile) Names() map[string]bool {
	names := make(map[string]bool, len(l.Packages))
	for _, p := range l.Packages {
		names[p.Name] = true
	}
	return names
}

// Diff computes the set of names present in old but absent from new
// (spec §4.8): the packages the remove flow must delete from the
// vendor tree.
func Diff(old, updated *Lockfile) []string {
	updatedNames := updated.Names()
	var removed []string
	for _, p := range old.Packages {
		if !updatedNames[p.Name] {
			removed = append(removed, p.Name)
		}
	}
	sort.Strings(removed)
	return removed
}
