package resolver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phpp-dev/phpp/internal/registry"
)

// mapFetcher serves canned metadata bodies by package name, bypassing
// the network and cache entirely.
type mapFetcher map[string][]byte

func (m mapFetcher) FetchMetadata(name string) ([]byte, error) {
	body, ok := m[name]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return body, nil
}

func newResolver(fetcher Fetcher) *Resolver {
	return New(fetcher, nil)
}

func constraintOf(s string) *string { return &s }

func TestResolveSingleExactPin(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"1.0.0"},
			{"name":"foo/bar","version":"2.0.0"}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("1.0.0"), ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ctx.Locked) != 1 || ctx.Locked[0].Version != "1.0.0" {
		t.Fatalf("unexpected locked set: %+v", ctx.Locked)
	}
}

func TestResolveTransitiveDependency(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"1.0.0","require":{"baz/qux":"^1.0"}}
		]}}`),
		"baz/qux": []byte(`{"packages":{"baz/qux":[
			{"name":"baz/qux","version":"1.5.0"}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("^1.0"), ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ctx.Locked) != 2 {
		t.Fatalf("expected 2 locked packages, got %d: %+v", len(ctx.Locked), ctx.Locked)
	}
	if ctx.Locked[0].Name != "foo/bar" || ctx.Locked[1].Name != "baz/qux" {
		t.Fatalf("unexpected order: %+v", ctx.Locked)
	}
}

func TestResolveStarSelectsNewestStable(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"3.0.0-beta1"},
			{"name":"foo/bar","version":"2.0.0"},
			{"name":"foo/bar","version":"1.0.0"}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", nil, ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.FirstPackage == nil || ctx.FirstPackage.Version != "2.0.0" {
		t.Fatalf("expected newest stable 2.0.0, got %+v", ctx.FirstPackage)
	}
}

func TestResolveRuntimeVersionViolation(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"1.0.0","require":{"php":">=8.2"}}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("1.0.0"), ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ctx.VersionViolations) != 1 {
		t.Fatalf("expected 1 version violation, got %+v", ctx.VersionViolations)
	}
	v := ctx.VersionViolations[0]
	if v.CulpritName != "foo/bar" || v.CulpritVersion != "1.0.0" || v.Constraint != ">=8.2" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestResolveMissingExtension(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"1.0.0","require":{"ext-gd":"*"}}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", []string{"mbstring"})
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("1.0.0"), ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ctx.ExtensionViolations) != 1 {
		t.Fatalf("expected 1 extension violation, got %+v", ctx.ExtensionViolations)
	}
	v := ctx.ExtensionViolations[0]
	if v.Extension != "gd" || v.CulpritName != "foo/bar" || v.CulpritVersion != "1.0.0" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestResolveConstraintPicksOlderMajor(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"2.0.0"},
			{"name":"foo/bar","version":"1.9.0"},
			{"name":"foo/bar","version":"1.0.0"}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("^1.0"), ctx); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ctx.Locked) != 1 || ctx.Locked[0].Version != "1.9.0" {
		t.Fatalf("expected 1.9.0 selected, got %+v", ctx.Locked)
	}
}

func TestResolveTransitiveNotFoundIsSwallowed(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": []byte(`{"packages":{"foo/bar":[
			{"name":"foo/bar","version":"1.0.0","require":{"ghost/pkg":"^1.0"}}
		]}}`),
	}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("1.0.0"), ctx); err != nil {
		t.Fatalf("expected missing transitive dependency to be swallowed, got %v", err)
	}
	if len(ctx.Locked) != 1 {
		t.Fatalf("expected only the root package locked, got %+v", ctx.Locked)
	}
}

func TestResolveRootNotFoundIsFatal(t *testing.T) {
	fetcher := mapFetcher{}
	ctx := NewContext("https://repo.packagist.org", "8.1.0", nil)
	r := newResolver(fetcher)

	if err := r.Resolve("foo/bar", constraintOf("1.0.0"), ctx); err != registry.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCachingFetcherSkipsDelayWhenNil(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"packages":{"foo/bar":[{"name":"foo/bar","version":"1.0.0"}]}}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := registry.NewClient(srv.URL)
	cache := registry.NewMetadataCache(dir)
	fetcher := &CachingFetcher{Client: client, Cache: cache, RegistryURL: srv.URL, Sleep: nil}

	body1, err := fetcher.FetchMetadata("foo/bar")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	body2, err := fetcher.FetchMetadata("foo/bar")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if string(body1) != string(body2) {
		t.Fatalf("expected identical bodies, got %s vs %s", body1, body2)
	}
	if hits != 1 {
		t.Fatalf("expected exactly 1 network hit (second served from cache), got %d", hits)
	}
}
