package main

import (
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/cachepath"
	"github.com/phpp-dev/phpp/internal/manifest"
)

// resolveRegistryURL picks the registry base URL a command should
// use, preferring the project manifest's repositories.packagist
// override, then the global config's, then the default (spec §6's
// "repositories" override block, surfaced through "config
// repo.packagist").
func resolveRegistryURL(projectPath string) (string, error) {
	m, err := manifest.Load(filepath.Join(projectPath, manifest.FileName))
	if err != nil {
		return "", err
	}
	if url, ok := m.PackagistURL(); ok {
		return url, nil
	}

	configRoot, err := cachepath.ConfigRoot()
	if err != nil {
		return "", err
	}
	g, err := manifest.LoadGlobalConfig(filepath.Join(configRoot, manifest.GlobalConfigFileName))
	if err != nil {
		return "", err
	}
	if url, ok := g.PackagistURL(); ok {
		return url, nil
	}

	return defaultRegistryURL, nil
}
