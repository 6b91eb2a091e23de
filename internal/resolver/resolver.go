package resolver

import (
	"time"

	"github.com/phpp-dev/phpp/internal/errs"
	"github.com/phpp-dev/phpp/internal/registry"
	"github.com/phpp-dev/phpp/internal/semver"
	"github.com/phpp-dev/phpp/internal/ui"
)

// Fetcher is the registry-client-plus-cache pairing the resolver needs
// (spec §4.4 step 2): consult the cache first, fall back to the
// network on a miss, and populate the cache on success.
type Fetcher interface {
	FetchMetadata(name string) ([]byte, error)
}

// CachingFetcher wires a *registry.Client to a *registry.MetadataCache,
// implementing the cache-then-network policy from spec §4.2/§4.4.
type CachingFetcher struct {
	Client      *registry.Client
	Cache       *registry.MetadataCache
	RegistryURL string
	// Sleep is injected so tests can skip the real 200ms courtesy delay.
	Sleep func(time.Duration)
}

// NewCachingFetcher returns a CachingFetcher with the real delay.
func NewCachingFetcher(client *registry.Client, cache *registry.MetadataCache, registryURL string) *CachingFetcher {
	return &CachingFetcher{Client: client, Cache: cache, RegistryURL: registryURL, Sleep: time.Sleep}
}

// FetchMetadata implements Fetcher.
func (f *CachingFetcher) FetchMetadata(name string) ([]byte, error) {
	if f.Cache.Exists(f.RegistryURL, name) {
		return f.Cache.Read(f.RegistryURL, name)
	}

	if f.Sleep != nil {
		f.Sleep(registry.BetweenFetchDelay)
	}

	body, err := f.Client.FetchMetadata(name)
	if err != nil {
		return nil, err
	}
	if err := f.Cache.Write(f.RegistryURL, name, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Resolver drives the recursive dependency walk.
type Resolver struct {
	Fetcher Fetcher
	Streams *ui.Streams
}

// New returns a Resolver.
func New(fetcher Fetcher, streams *ui.Streams) *Resolver {
	return &Resolver{Fetcher: fetcher, Streams: streams}
}

// Resolve recursively resolves name at constraint (nil for an open
// top-level "*" requirement) into ctx, per spec §4.4.
func (r *Resolver) Resolve(name string, constraint *string, ctx *Context) error {
	// Step 1: cycle/duplicate guard.
	if ctx.Visited(name) {
		return nil
	}

	// Step 2: consult cache, fall back to network. A NotFound on a
	// root requirement is fatal; on a transitive one it is swallowed
	// (spec §4.4 step 2, §7) by the caller, which only recurses for
	// non-root names.
	body, err := r.Fetcher.FetchMetadata(name)
	if err != nil {
		if err == registry.ErrNotFound {
			return err
		}
		return err
	}

	// Step 3: parse.
	meta, err := registry.DecodeMetadata(body)
	if err != nil {
		return errs.Wrap(errs.MalformedMetadata, err, "parsing metadata for %s", name)
	}
	versions := meta.Versions(name)

	// Step 4: select a version.
	selected, err := selectVersion(name, constraint, versions)
	if err != nil {
		return err
	}
	if constraint == nil {
		cp := selected
		ctx.FirstPackage = &LockedPackage{Name: name, Version: selected.Version, Record: cp}
	}

	// Step 5: stamp and append.
	lp := LockedPackage{Name: name, Version: selected.Version, Record: selected}
	ctx.MarkVisited(name, lp)

	// Step 6: progress line.
	if r.Streams != nil {
		r.Streams.Progress("Locking %s(%s)", name, selected.Version)
	}

	// Step 7: walk this version's own requirements, in declared order.
	for _, req := range selected.Require {
		depName, depConstraint := req.Name, req.Constraint

		if depName == "php" {
			ok, err := semver.Satisfies(depConstraint, ctx.RuntimeVersion)
			if err != nil {
				return err
			}
			if !ok {
				ctx.AddVersionViolation(VersionViolation{
					CulpritName:    name,
					CulpritVersion: selected.Version,
					Constraint:     depConstraint,
				})
			}
			continue
		}

		if registry.IsPlatformPackage(depName) {
			ext := registry.ExtensionName(depName)
			if !ctx.RuntimeExtensions[ext] {
				ctx.AddExtensionViolation(ExtensionViolation{
					CulpritName:    name,
					CulpritVersion: selected.Version,
					Extension:      ext,
					Constraint:     depConstraint,
				})
			}
			continue
		}

		c := depConstraint
		if err := r.Resolve(depName, &c, ctx); err != nil {
			if err == registry.ErrNotFound {
				// Non-root metadata-missing is swallowed (spec §4.4 step 2, §7):
				// a typo'd or removed transitive dependency does not abort
				// the walk.
				continue
			}
			return err
		}
	}

	return nil
}

// selectVersion implements spec §4.4 step 4's selection rule.
func selectVersion(name string, constraint *string, versions []registry.VersionRecord) (registry.VersionRecord, error) {
	if constraint != nil {
		for _, v := range versions {
			ok, err := semver.Satisfies(*constraint, v.Version)
			if err != nil {
				continue // tolerate one malformed candidate version, try the rest
			}
			if ok {
				return v, nil
			}
		}
		return registry.VersionRecord{}, errs.Of(errs.MetadataMissing,
			"no version of %s satisfies %q", name, *constraint)
	}

	for _, v := range versions {
		ver, err := semver.ParseVersion(v.Version)
		if err != nil {
			continue
		}
		if ver.Stable() {
			return v, nil
		}
	}
	return registry.VersionRecord{}, errs.Of(errs.MetadataMissing,
		"no stable version available for %s", name)
}
