// Package manifest reads and writes the project's composer.json:
// the ordered require mapping and the optional packagist repository
// override (spec §6). It follows the teacher's raw/public struct
// split (manifest.go's rawManifest/Manifest), but the require section
// here is an ordered mapping, not a plain Go map, since the manifest's
// own field order is user-meaningful and must survive a read-modify-write
// round trip (spec §6, §9 design note on the orchestrator's pin rewrite).
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// FileName is the manifest's fixed filename, always resolved relative
// to the current working directory (spec §6).
const FileName = "composer.json"

// Requirement is one name/constraint pair from the require section.
type Requirement struct {
	Name       string
	Constraint string
}

// Repository is the packagist repository override block.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Manifest is the in-memory, ordered form of composer.json.
type Manifest struct {
	Require      []Requirement
	Repositories map[string]Repository // keyed by the repository alias, e.g. "packagist"
}

type rawManifest struct {
	Require      json.RawMessage        `json:"require,omitempty"`
	Repositories map[string]Repository  `json:"repositories,omitempty"`
}

// New returns an empty manifest, matching the "{"require":{}}" default
// a missing file is created with on first use (spec §6).
func New() *Manifest {
	return &Manifest{Require: []Requirement{}}
}

// Load reads composer.json from path. A missing file is not an error:
// it yields a fresh empty manifest, to be created on first Save.
func Load(path string) (*Manifest, error) {
	body, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "reading %s", path)
	}
	return Parse(body)
}

// Parse decodes composer.json's bytes into a Manifest.
func Parse(body []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "parsing manifest JSON")
	}

	m := &Manifest{Repositories: raw.Repositories}

	if len(raw.Require) > 0 {
		reqs, err := decodeOrderedRequire(raw.Require)
		if err != nil {
			return nil, errs.Wrap(errs.LocalIo, err, "parsing manifest require section")
		}
		m.Require = reqs
	} else {
		m.Require = []Requirement{}
	}

	return m, nil
}

// decodeOrderedRequire walks the require object's tokens manually, the
// same way registry.Requires does, so the manifest's on-disk
// declaration order survives a load.
func decodeOrderedRequire(data json.RawMessage) ([]Requirement, error) {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 || trimmed == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil
	}

	var out []Requirement
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var val string
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, Requirement{Name: key, Constraint: val})
	}
	return out, nil
}

// Get returns the declared constraint for name, if present.
func (m *Manifest) Get(name string) (string, bool) {
	for _, r := range m.Require {
		if r.Name == name {
			return r.Constraint, true
		}
	}
	return "", false
}

// Set inserts or rewrites name's constraint, preserving its existing
// position if already present, appending otherwise (spec §4.9's
// require/pin-rewrite flow).
func (m *Manifest) Set(name, constraint string) {
	for i, r := range m.Require {
		if r.Name == name {
			m.Require[i].Constraint = constraint
			return
		}
	}
	m.Require = append(m.Require, Requirement{Name: name, Constraint: constraint})
}

// Remove drops name from the require section, if present.
func (m *Manifest) Remove(name string) {
	for i, r := range m.Require {
		if r.Name == name {
			m.Require = append(m.Require[:i], m.Require[i+1:]...)
			return
		}
	}
}

// PackagistURL returns the repositories.packagist.url override, if set.
func (m *Manifest) PackagistURL() (string, bool) {
	if m.Repositories == nil {
		return "", false
	}
	r, ok := m.Repositories["packagist"]
	if !ok {
		return "", false
	}
	return r.URL, true
}

// SetPackagistURL sets the repositories.packagist override.
func (m *Manifest) SetPackagistURL(kind, url string) {
	if m.Repositories == nil {
		m.Repositories = make(map[string]Repository, 1)
	}
	m.Repositories["packagist"] = Repository{Type: kind, URL: url}
}

// UnsetPackagistURL removes the repositories.packagist override entirely.
func (m *Manifest) UnsetPackagistURL() {
	delete(m.Repositories, "packagist")
}

// Marshal renders the manifest back to indented, HTML-unescaped JSON,
// matching the teacher's manifest encoder settings. The require
// section is hand-rendered to preserve declaration order; encoding/json
// cannot do this for a map and a slice-of-pairs has no native object
// form.
func (m *Manifest) Marshal() ([]byte, error) {
	var requireBuf bytes.Buffer
	requireBuf.WriteString("{")
	for i, r := range m.Require {
		if i > 0 {
			requireBuf.WriteString(",")
		}
		requireBuf.WriteString("\n        ")
		keyBytes, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(r.Constraint)
		if err != nil {
			return nil, err
		}
		requireBuf.Write(keyBytes)
		requireBuf.WriteString(": ")
		requireBuf.Write(valBytes)
	}
	if len(m.Require) > 0 {
		requireBuf.WriteString("\n    ")
	}
	requireBuf.WriteString("}")

	raw := struct {
		Require      json.RawMessage       `json:"require"`
		Repositories map[string]Repository `json:"repositories,omitempty"`
	}{
		Require:      requireBuf.Bytes(),
		Repositories: m.Repositories,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	body, err := m.Marshal()
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "encoding manifest")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing %s", path)
	}
	return nil
}
