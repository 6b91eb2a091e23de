package lockfile

import (
	"testing"

	"github.com/phpp-dev/phpp/internal/registry"
)

func TestFromLockedSortsByName(t *testing.T) {
	l := FromLocked([]registry.VersionRecord{
		{Name: "zzz/last", Version: "1.0.0"},
		{Name: "aaa/first", Version: "2.0.0"},
	})
	if l.Packages[0].Name != "aaa/first" || l.Packages[1].Name != "zzz/last" {
		t.Fatalf("expected sorted order, got %+v", l.Packages)
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	l := FromLocked([]registry.VersionRecord{
		{Name: "foo/bar", Version: "1.2.3", VersionNormalized: "1.2.3.0"},
	})
	body, err := l.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reparsed, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reparsed.Packages) != 1 || reparsed.Packages[0].Name != "foo/bar" {
		t.Fatalf("round trip mismatch: %+v", reparsed.Packages)
	}

	body2, err := reparsed.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if string(body) != string(body2) {
		t.Fatalf("serialization not stable:\n%s\nvs\n%s", body, body2)
	}
}

func TestLoadMissingFileYieldsEmptyLockfile(t *testing.T) {
	l, err := Load("/nonexistent/path/composer.lock")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.Packages) != 0 {
		t.Fatalf("expected empty lockfile, got %+v", l.Packages)
	}
}

func TestDiffComputesRemovedNames(t *testing.T) {
	old := FromLocked([]registry.VersionRecord{
		{Name: "foo/bar", Version: "1.0.0"},
		{Name: "baz/qux", Version: "2.0.0"},
	})
	updated := FromLocked([]registry.VersionRecord{
		{Name: "foo/bar", Version: "1.0.0"},
	})

	removed := Diff(old, updated)
	if len(removed) != 1 || removed[0] != "baz/qux" {
		t.Fatalf("unexpected diff: %+v", removed)
	}
}

func TestDiffEmptyWhenNothingRemoved(t *testing.T) {
	old := FromLocked([]registry.VersionRecord{{Name: "foo/bar", Version: "1.0.0"}})
	updated := FromLocked([]registry.VersionRecord{{Name: "foo/bar", Version: "1.0.0"}, {Name: "baz/qux", Version: "2.0.0"}})

	removed := Diff(old, updated)
	if len(removed) != 0 {
		t.Fatalf("expected no removals, got %+v", removed)
	}
}
