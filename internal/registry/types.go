// Package registry models the registry's p2 metadata format and
// fetches it (and archive blobs) over HTTP, consulting the on-disk
// metadata cache first.
package registry

import (
	"encoding/json"
	"strings"
)

// IsPlatformPackage reports whether name denotes a platform requirement
// (php, ext-*) rather than a fetchable package, per spec §3.
func IsPlatformPackage(name string) bool {
	return name == "php" || strings.HasPrefix(name, "ext-")
}

// ExtensionName strips the "ext-" prefix from a platform extension name.
func ExtensionName(name string) string {
	return strings.TrimPrefix(name, "ext-")
}

// Dist describes where to download a package's archive from.
type Dist struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// Source describes a VCS source location. phpp never checks this out
// (spec §1 non-goal: no source-type packages), but it's retained
// verbatim in version records so it round-trips through the lockfile.
type Source struct {
	URL       string `json:"url,omitempty"`
	Type      string `json:"type,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Requirement is one name/constraint pair from a require section.
type Requirement struct {
	Name       string
	Constraint string
}

// Requires is the require / require-dev field, tolerant of the
// registry's degenerate bare-string encoding for "no dependencies"
// (spec §3, SPEC_FULL §3). It preserves the declared key order, since
// spec §5's ordering guarantee makes the resolver's depth-first walk
// deterministic only if dependencies are visited "in the order
// supplied by the metadata's require mapping" — an ordinary Go map
// would silently discard that order.
type Requires []Requirement

// Get returns the constraint declared for name and whether it was present.
func (r Requires) Get(name string) (string, bool) {
	for _, req := range r {
		if req.Name == name {
			return req.Constraint, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts either an object of name->constraint (key order
// preserved) or any JSON string, which is treated as an empty
// requirement set.
func (r *Requires) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 || trimmed[0] == '"' {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		// Tolerant: anything else that isn't an object is treated as empty.
		*r = nil
		return nil
	}

	var out Requires
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, Requirement{Name: key, Constraint: val})
	}
	*r = out
	return nil
}

// MarshalJSON renders Requires back to an object via a Go map, so the
// keys come out sorted by name rather than in declared order. phpp
// never needs to re-emit a require section in its declared order, only
// the lockfile's own top-level package ordering, which is sorted
// separately.
func (r Requires) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(r))
	for _, req := range r {
		m[req.Name] = req.Constraint
	}
	return json.Marshal(m)
}

// PSR4Value is a psr-4 map value: either a single directory or a list
// of directories (spec §3).
type PSR4Value []string

// UnmarshalJSON accepts a bare string or a list of strings.
func (p *PSR4Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = []string{s}
	return nil
}

// MarshalJSON renders a single-element value as a bare string and a
// multi-element value as a list, mirroring what registries publish.
func (p PSR4Value) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

// Autoload is the structured form of the autoload descriptor (spec §3).
type Autoload struct {
	PSR4     map[string]PSR4Value `json:"psr-4,omitempty"`
	PSR0     map[string]PSR4Value `json:"psr-0,omitempty"`
	Classmap []string             `json:"classmap,omitempty"`
	Files    []string             `json:"files,omitempty"`
}

// AutoloadDescriptor is the polymorphic autoload field: a structured
// object, a bare string, or null (spec §3, §9). Decoding is tolerant:
// an unrecognized shape yields an empty, non-nil descriptor rather
// than an error.
type AutoloadDescriptor struct {
	Structured *Autoload
}

// UnmarshalJSON implements the tolerant decode spec §9 calls for.
func (a *AutoloadDescriptor) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		a.Structured = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		// Bare string variant: no structured autoload information.
		a.Structured = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var s Autoload
		if err := json.Unmarshal(data, &s); err != nil {
			// Tolerant: malformed structured autoload degrades to empty.
			a.Structured = nil
			return nil
		}
		a.Structured = &s
		return nil
	}
	a.Structured = nil
	return nil
}

// MarshalJSON renders the structured form, or null when absent, so the
// field round-trips through the lockfile instead of leaking the
// wrapper struct's field name.
func (a AutoloadDescriptor) MarshalJSON() ([]byte, error) {
	if a.Structured == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.Structured)
}

// VersionRecord is one entry in a package's metadata version list.
type VersionRecord struct {
	Name              string             `json:"name"`
	Version           string             `json:"version"`
	VersionNormalized string             `json:"version_normalized,omitempty"`
	Source            *Source            `json:"source,omitempty"`
	Dist              *Dist              `json:"dist,omitempty"`
	Require           Requires           `json:"require,omitempty"`
	RequireDev        Requires           `json:"require-dev,omitempty"`
	Autoload          AutoloadDescriptor `json:"autoload,omitempty"`
}

// Metadata is the decoded form of a registry p2 response: the ordered
// (newest-first) list of version records for one package name.
type Metadata struct {
	Packages map[string][]VersionRecord `json:"packages"`
}

// Versions returns the version list for name, or nil if absent.
func (m *Metadata) Versions(name string) []VersionRecord {
	return m.Packages[name]
}

// DecodeMetadata parses a p2 registry response body.
func DecodeMetadata(body []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
