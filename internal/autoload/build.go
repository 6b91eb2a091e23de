package autoload

import (
	"strings"

	"github.com/phpp-dev/phpp/internal/registry"
)

// ManifestAutoload is the subset of composer.json's own autoload
// section phpp contributes as base-relative entries (spec §4.6: "The
// manifest contributes base-relative entries"). The manifest type
// itself doesn't model this section since §6's manifest schema covers
// only require/repositories; callers that want a project-level
// autoload section pass it in directly here.
type ManifestAutoload struct {
	PSR4  map[string][]string
	Files []string
}

// BuildPsr4Map merges the manifest's own psr-4 section (base-relative)
// with every locked package's psr-4 section (vendor-relative), per
// spec §4.6.
func BuildPsr4Map(projectAutoload *ManifestAutoload, locked []registry.VersionRecord) *Psr4Map {
	m := NewPsr4Map()

	if projectAutoload != nil {
		for prefix, dirs := range projectAutoload.PSR4 {
			for _, d := range dirs {
				m.Add(prefix, Base, "/"+strings.TrimSuffix(d, "/"))
			}
		}
	}

	for _, pkg := range locked {
		if pkg.Autoload.Structured == nil {
			continue
		}
		for prefix, dirs := range pkg.Autoload.Structured.PSR4 {
			for _, d := range dirs {
				path := "/" + pkg.Name + "/" + strings.TrimSuffix(d, "/")
				m.Add(prefix, Vendor, path)
			}
		}
	}

	return m
}

// BuildFilesMap merges the manifest's own files section (base-relative)
// with every locked package's files section (vendor-relative).
func BuildFilesMap(projectAutoload *ManifestAutoload, locked []registry.VersionRecord) *FilesMap {
	m := NewFilesMap()

	if projectAutoload != nil {
		for _, f := range projectAutoload.Files {
			m.Insert(Base, "/"+strings.TrimPrefix(f, "/"))
		}
	}

	for _, pkg := range locked {
		if pkg.Autoload.Structured == nil {
			continue
		}
		for _, f := range pkg.Autoload.Structured.Files {
			m.Insert(Vendor, "/"+pkg.Name+"/"+strings.TrimPrefix(f, "/"))
		}
	}

	return m
}
