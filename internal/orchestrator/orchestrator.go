// Package orchestrator drives the four primary operations spec §4.9
// names: install, remove, require, and search. It wires together the
// resolver, the manifest and lockfile managers, the archive cache and
// extractor, the autoload emitter, and the platform detector.
package orchestrator

import (
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/archive"
	"github.com/phpp-dev/phpp/internal/autoload"
	"github.com/phpp-dev/phpp/internal/errs"
	"github.com/phpp-dev/phpp/internal/lockfile"
	"github.com/phpp-dev/phpp/internal/manifest"
	"github.com/phpp-dev/phpp/internal/platform"
	"github.com/phpp-dev/phpp/internal/registry"
	"github.com/phpp-dev/phpp/internal/resolver"
	"github.com/phpp-dev/phpp/internal/ui"
)

// maxViolationLines caps the diagnostic lines printed per violation
// category (spec §7, §4.9: "up to four diagnostic lines per category").
const maxViolationLines = 4

// Orchestrator holds every collaborator a command invocation needs,
// rooted at one project directory.
type Orchestrator struct {
	ProjectPath string
	VendorDir   string

	RegistryURL string
	Client      *registry.Client
	MetaCache   *registry.MetadataCache
	Archives    *archive.Cache
	Runner      platform.Runner
	Streams     *ui.Streams

	// Fetcher overrides the default cache-then-network metadata
	// fetcher; nil uses the real CachingFetcher. Tests substitute a
	// stub here to run without a network or a php binary on PATH.
	Fetcher resolver.Fetcher
}

// New wires an Orchestrator rooted at projectPath, against the given
// registry base URL and per-user cache root.
func New(projectPath, registryURL, cacheRoot string, streams *ui.Streams) *Orchestrator {
	return &Orchestrator{
		ProjectPath: projectPath,
		VendorDir:   filepath.Join(projectPath, "vendor"),
		RegistryURL: registryURL,
		Client:      registry.NewClient(registryURL),
		MetaCache:   registry.NewMetadataCache(cacheRoot),
		Archives:    archive.NewCache(cacheRoot),
		Runner:      platform.ExecRunner{},
		Streams:     streams,
	}
}

func (o *Orchestrator) manifestPath() string {
	return filepath.Join(o.ProjectPath, manifest.FileName)
}

func (o *Orchestrator) lockfilePath() string {
	return filepath.Join(o.ProjectPath, lockfile.FileName)
}

// detectPlatform shells out to the configured php interpreter to
// populate the resolution context's runtime facts (spec §6).
func (o *Orchestrator) detectPlatform() (string, []string, error) {
	version, err := platform.DetectVersion(o.Runner)
	if err != nil {
		return "", nil, err
	}
	exts, err := platform.DetectExtensions(o.Runner)
	if err != nil {
		return "", nil, err
	}
	return version, exts, nil
}

// newContext builds a fresh resolution context and resolver pair for
// one command invocation.
func (o *Orchestrator) newContext() (*resolver.Context, *resolver.Resolver, error) {
	version, exts, err := o.detectPlatform()
	if err != nil {
		return nil, nil, err
	}
	ctx := resolver.NewContext(o.RegistryURL, version, exts)
	fetcher := o.Fetcher
	if fetcher == nil {
		fetcher = resolver.NewCachingFetcher(o.Client, o.MetaCache, o.RegistryURL)
	}
	return ctx, resolver.New(fetcher, o.Streams), nil
}

// constraintPtr converts a manifest-declared constraint string into
// the nil-for-open-requirement form Resolve expects (spec §4.4 step 4:
// literal "*" or an absent pin both mean "no constraint").
func constraintPtr(declared string) *string {
	if declared == "" || declared == "*" {
		return nil
	}
	c := declared
	return &c
}

// displayConstraint renders a manifest requirement's declared
// constraint for the diagnostic format of spec §7, where an open
// requirement displays as the literal "*".
func displayConstraint(declared string) string {
	if declared == "" {
		return "*"
	}
	return declared
}

// reportViolations prints up to maxViolationLines diagnostic lines per
// category for rootName's resolution and reports whether any were
// found (spec §7, §4.9).
func (o *Orchestrator) reportViolations(rootName, rootConstraint string, ctx *resolver.Context) bool {
	display := displayConstraint(rootConstraint)
	found := false

	for i, v := range ctx.VersionViolations {
		if i >= maxViolationLines {
			break
		}
		found = true
		o.Streams.Logf("%s(%s) -> .. -> %s(%s) need PHP version is %s",
			rootName, display, v.CulpritName, v.CulpritVersion, v.Constraint)
	}

	for i, v := range ctx.ExtensionViolations {
		if i >= maxViolationLines {
			break
		}
		found = true
		o.Streams.Logf("%s(%s) -> .. -> %s(%s) need ext-%s,it is missing from your system. Install or enable PHP's %s extension.",
			rootName, display, v.CulpritName, v.CulpritVersion, v.Extension, v.Extension)
	}

	return found
}

// lockedRecords extracts the raw version records from a context's
// locked set, in resolution (insertion) order.
func lockedRecords(ctx *resolver.Context) []registry.VersionRecord {
	out := make([]registry.VersionRecord, len(ctx.Locked))
	for i, lp := range ctx.Locked {
		out[i] = lp.Record
	}
	return out
}

// downloadAndExtract materializes every locked package into the
// vendor tree (spec §4.5).
func (o *Orchestrator) downloadAndExtract(locked []resolver.LockedPackage) error {
	for _, lp := range locked {
		if lp.Record.Dist == nil {
			continue
		}

		if !o.Archives.Exists(lp.Name, lp.Version) {
			body, err := o.Client.FetchArchive(lp.Record.Dist.URL)
			if err != nil {
				return err
			}
			if err := o.Archives.Write(lp.Name, lp.Version, body); err != nil {
				return err
			}
			o.Streams.Progress("Downloading %s(%s)", lp.Name, lp.Version)
		}

		o.Streams.Progress("Installing %s(%s)", lp.Name, lp.Version)
		if err := archive.Extract(o.Archives.Path(lp.Name, lp.Version), o.VendorDir, lp.Name); err != nil {
			return err
		}
	}
	return nil
}

// regenerateAutoload scans every locked package's extracted sources
// for classes and rewrites the full loader bundle (spec §4.6).
func (o *Orchestrator) regenerateAutoload(records []registry.VersionRecord) error {
	psr4 := autoload.BuildPsr4Map(nil, records)
	files := autoload.BuildFilesMap(nil, records)

	classmap := make(map[string]string)
	for _, rec := range records {
		pkgDir := filepath.Join(o.VendorDir, filepath.FromSlash(rec.Name))
		found, err := autoload.ScanClassmap(o.VendorDir, pkgDir)
		if err != nil {
			return err
		}
		for fqcn, path := range found {
			classmap[fqcn] = path
		}
	}

	return autoload.Write(o.VendorDir, o.ProjectPath, psr4, files, classmap)
}

// rollback reloads the on-disk manifest and drops name from it,
// undoing the edit that introduced an offending top-level requirement
// (spec §4.9: "rolls back the manifest edit that introduced the
// offending top-level name").
func (o *Orchestrator) rollback(name string) error {
	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		return err
	}
	m.Remove(name)
	return m.Save(o.manifestPath())
}

// Install resolves name (or every requirement in the manifest, when
// name is empty), persists the lockfile, downloads and extracts every
// locked package, and regenerates the autoload bundle (spec §4.9).
func (o *Orchestrator) Install(name string) error {
	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		return err
	}

	targets := m.Require
	if name != "" {
		c, ok := m.Get(name)
		if !ok {
			return errs.Of(errs.MetadataMissing, "%s is not present in %s", name, manifest.FileName)
		}
		targets = []manifest.Requirement{{Name: name, Constraint: c}}
	}

	ctx, res, err := o.newContext()
	if err != nil {
		return err
	}

	for _, req := range targets {
		ctx.FirstPackage = nil

		if err := res.Resolve(req.Name, constraintPtr(req.Constraint), ctx); err != nil {
			if err == registry.ErrNotFound {
				return errs.Wrap(errs.MetadataMissing, err, "root requirement %s not found in registry", req.Name)
			}
			return err
		}

		if o.reportViolations(req.Name, req.Constraint, ctx) {
			if rerr := o.rollback(req.Name); rerr != nil {
				return rerr
			}
			return errs.Of(errs.PlatformIncompatible, "%s is incompatible with the detected PHP runtime", req.Name)
		}

		if ctx.FirstPackage != nil {
			m.Set(req.Name, ctx.FirstPackage.Version)
		}
	}

	if err := m.Save(o.manifestPath()); err != nil {
		return err
	}

	records := lockedRecords(ctx)
	lock := lockfile.FromLocked(records)
	if err := lock.Save(o.lockfilePath()); err != nil {
		return err
	}

	if err := o.downloadAndExtract(ctx.Locked); err != nil {
		return err
	}

	return o.regenerateAutoload(lock.Packages)
}

// Require inserts name at constraint (or "*" if empty) into the
// manifest and installs it (spec §4.9).
func (o *Orchestrator) Require(name, constraint string) error {
	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		return err
	}
	if constraint == "" {
		constraint = "*"
	}
	m.Set(name, constraint)
	if err := m.Save(o.manifestPath()); err != nil {
		return err
	}
	return o.Install(name)
}

// Remove drops name from the manifest, re-resolves the reduced set,
// deletes the packages the new lock no longer names, and rewrites the
// loader bundle (spec §4.9).
func (o *Orchestrator) Remove(name string) error {
	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		return err
	}
	m.Remove(name)
	if err := m.Save(o.manifestPath()); err != nil {
		return err
	}

	oldLock, err := lockfile.Load(o.lockfilePath())
	if err != nil {
		return err
	}

	ctx, res, err := o.newContext()
	if err != nil {
		return err
	}

	for _, req := range m.Require {
		ctx.FirstPackage = nil
		if err := res.Resolve(req.Name, constraintPtr(req.Constraint), ctx); err != nil {
			if err == registry.ErrNotFound {
				return errs.Wrap(errs.MetadataMissing, err, "root requirement %s not found in registry", req.Name)
			}
			return err
		}
		if o.reportViolations(req.Name, req.Constraint, ctx) {
			return errs.Of(errs.PlatformIncompatible, "%s is incompatible with the detected PHP runtime", req.Name)
		}
		if ctx.FirstPackage != nil {
			m.Set(req.Name, ctx.FirstPackage.Version)
		}
	}

	if err := m.Save(o.manifestPath()); err != nil {
		return err
	}

	newLock := lockfile.FromLocked(lockedRecords(ctx))
	if err := newLock.Save(o.lockfilePath()); err != nil {
		return err
	}

	for _, removedName := range lockfile.Diff(oldLock, newLock) {
		if err := archive.RemovePackage(o.VendorDir, removedName); err != nil {
			return err
		}
	}

	return o.regenerateAutoload(newLock.Packages)
}

// Search performs the out-of-scope glue over the registry's search
// endpoint (spec §4.9).
func (o *Orchestrator) Search(keyword string) ([]registry.SearchResult, error) {
	return o.Client.Search(keyword)
}

// DumpAutoload rebuilds the loader bundle from the on-disk lockfile
// without touching the manifest, the resolver, or the vendor tree's
// extracted contents (the "dump-autoload" CLI surface, spec §6).
func (o *Orchestrator) DumpAutoload() error {
	lock, err := lockfile.Load(o.lockfilePath())
	if err != nil {
		return err
	}
	return o.regenerateAutoload(lock.Packages)
}

// ClearCache empties the metadata cache (the "clear" CLI surface,
// spec §4.2: "No TTL -- cache is explicit-invalidation").
func (o *Orchestrator) ClearCache() error {
	return o.MetaCache.Clear()
}
