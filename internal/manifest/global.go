package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/errs"
)

// GlobalConfigFileName is the per-user configuration file's fixed
// name, resolved under cachepath.ConfigRoot() (spec §6: "Global
// configuration", "same shape as manifest's repositories block").
const GlobalConfigFileName = "config.json"

// GlobalConfig is the decoded form of <home>/.config/phpp/config.json:
// just the repositories block, keyed by alias.
type GlobalConfig struct {
	Repositories map[string]Repository
}

type rawGlobalConfig struct {
	Repositories map[string]Repository `json:"repositories,omitempty"`
}

// NewGlobalConfig returns an empty global configuration.
func NewGlobalConfig() *GlobalConfig {
	return &GlobalConfig{}
}

// LoadGlobalConfig reads path. A missing file yields an empty config,
// to be created on first Save, matching the manifest's own
// missing-file policy.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	body, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewGlobalConfig(), nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "reading %s", path)
	}
	var raw rawGlobalConfig
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "parsing global config JSON")
	}
	return &GlobalConfig{Repositories: raw.Repositories}, nil
}

// PackagistURL returns the repositories.packagist.url override, if set.
func (g *GlobalConfig) PackagistURL() (string, bool) {
	if g.Repositories == nil {
		return "", false
	}
	r, ok := g.Repositories["packagist"]
	if !ok {
		return "", false
	}
	return r.URL, true
}

// SetPackagistURL sets the repositories.packagist override.
func (g *GlobalConfig) SetPackagistURL(kind, url string) {
	if g.Repositories == nil {
		g.Repositories = make(map[string]Repository, 1)
	}
	g.Repositories["packagist"] = Repository{Type: kind, URL: url}
}

// UnsetPackagistURL removes the repositories.packagist override.
func (g *GlobalConfig) UnsetPackagistURL() {
	delete(g.Repositories, "packagist")
}

// Save writes the global configuration to path, creating parent
// directories as needed.
func (g *GlobalConfig) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rawGlobalConfig{Repositories: g.Repositories}); err != nil {
		return errs.Wrap(errs.LocalIo, err, "encoding global config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing %s", path)
	}
	return nil
}
