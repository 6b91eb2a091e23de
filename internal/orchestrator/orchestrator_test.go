package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phpp-dev/phpp/internal/manifest"
	"github.com/phpp-dev/phpp/internal/registry"
	"github.com/phpp-dev/phpp/internal/ui"
)

type mapFetcher map[string][]byte

func (f mapFetcher) FetchMetadata(name string) ([]byte, error) {
	body, ok := f[name]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return body, nil
}

type stubRunner struct {
	version string
	modules string
}

func (s stubRunner) Run(name string, args ...string) ([]byte, error) {
	if len(args) > 0 && args[0] == "-v" {
		return []byte("PHP " + s.version + " (cli)\n"), nil
	}
	return []byte(s.modules), nil
}

func newTestOrchestrator(t *testing.T, fetcher mapFetcher, runnerVersion, runnerModules string) *Orchestrator {
	t.Helper()
	dir := t.TempDir()
	streams := &ui.Streams{Out: new(strings.Builder), Err: new(strings.Builder)}
	o := New(dir, "https://example.test", filepath.Join(dir, ".cache"), streams)
	o.Runner = stubRunner{version: runnerVersion, modules: runnerModules}
	o.Fetcher = fetcher
	return o
}

func writeManifest(t *testing.T, o *Orchestrator, require map[string]string) {
	t.Helper()
	m := manifest.New()
	for name, constraint := range require {
		m.Set(name, constraint)
	}
	if err := m.Save(o.manifestPath()); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
}

func metadataFixture(name, version, requirePHP string) []byte {
	req := ""
	if requirePHP != "" {
		req = `,"require":{"php":"` + requirePHP + `"}`
	}
	return []byte(`{"packages":{"` + name + `":[{"name":"` + name + `","version":"` + version + `"` + req + `}]}}`)
}

func TestInstallLocksSinglePackage(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": metadataFixture("foo/bar", "1.2.3", ""),
	}
	o := newTestOrchestrator(t, fetcher, "8.2.0", "")
	writeManifest(t, o, map[string]string{"foo/bar": "1.2.3"})

	if err := os.MkdirAll(filepath.Join(o.VendorDir, "foo", "bar"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := o.Install(""); err != nil {
		t.Fatalf("Install: %v", err)
	}

	body, err := os.ReadFile(o.lockfilePath())
	if err != nil {
		t.Fatalf("reading lockfile: %v", err)
	}
	if !strings.Contains(string(body), `"foo/bar"`) || !strings.Contains(string(body), `"1.2.3"`) {
		t.Fatalf("lockfile missing expected package: %s", body)
	}
}

func TestRequireRewritesStarToConcreteVersion(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": metadataFixture("foo/bar", "1.2.3", ""),
	}
	o := newTestOrchestrator(t, fetcher, "8.2.0", "")
	writeManifest(t, o, map[string]string{})

	if err := os.MkdirAll(filepath.Join(o.VendorDir, "foo", "bar"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := o.Require("foo/bar", ""); err != nil {
		t.Fatalf("Require: %v", err)
	}

	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		t.Fatalf("reloading manifest: %v", err)
	}
	got, ok := m.Get("foo/bar")
	if !ok || got != "1.2.3" {
		t.Fatalf("expected pin rewritten to 1.2.3, got %q (present=%v)", got, ok)
	}
}

func TestInstallRollsBackManifestOnPlatformViolation(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": metadataFixture("foo/bar", "1.2.3", ">=8.3.0"),
	}
	o := newTestOrchestrator(t, fetcher, "8.2.0", "")
	writeManifest(t, o, map[string]string{})

	err := o.Require("foo/bar", "")
	if err == nil {
		t.Fatalf("expected PlatformIncompatible error")
	}

	m, rerr := manifest.Load(o.manifestPath())
	if rerr != nil {
		t.Fatalf("reloading manifest: %v", rerr)
	}
	if _, ok := m.Get("foo/bar"); ok {
		t.Fatalf("expected foo/bar removed from manifest after rollback")
	}

	errOut := o.Streams.Err.(*strings.Builder).String()
	if !strings.Contains(errOut, "foo/bar(*) -> .. -> foo/bar(1.2.3) need PHP version is >=8.3.0") {
		t.Fatalf("unexpected diagnostic output: %s", errOut)
	}
}

func TestRemoveDeletesExtractedPackageDirectory(t *testing.T) {
	fetcher := mapFetcher{
		"foo/bar": metadataFixture("foo/bar", "1.2.3", ""),
	}
	o := newTestOrchestrator(t, fetcher, "8.2.0", "")
	writeManifest(t, o, map[string]string{"foo/bar": "1.2.3"})

	pkgDir := filepath.Join(o.VendorDir, "foo", "bar")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := o.Install(""); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if err := o.Remove("foo/bar"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := os.Stat(pkgDir); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, stat err: %v", pkgDir, err)
	}

	m, err := manifest.Load(o.manifestPath())
	if err != nil {
		t.Fatalf("reloading manifest: %v", err)
	}
	if _, ok := m.Get("foo/bar"); ok {
		t.Fatalf("expected foo/bar removed from manifest")
	}
}
