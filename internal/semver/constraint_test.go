package semver

import "testing"

func mustSatisfies(t *testing.T, constraint, version string) bool {
	t.Helper()
	ok, err := Satisfies(constraint, version)
	if err != nil {
		t.Fatalf("Satisfies(%q, %q): %v", constraint, version, err)
	}
	return ok
}

func TestSatisfiesAlternation(t *testing.T) {
	if !mustSatisfies(t, "^7.0 | ^8.0", "7.2.3") {
		t.Error("expected 7.2.3 to satisfy ^7.0 | ^8.0")
	}
	if mustSatisfies(t, "^7.0 | ^8.0", "9.2.3") {
		t.Error("expected 9.2.3 to not satisfy ^7.0 | ^8.0")
	}
	if !mustSatisfies(t, "^7.0 || ^8.0", "8.2.3") {
		t.Error("expected 8.2.3 to satisfy ^7.0 || ^8.0")
	}
}

func TestSatisfiesStar(t *testing.T) {
	if !mustSatisfies(t, "*", "1.2.3") {
		t.Error("* should match a stable version")
	}
	if mustSatisfies(t, "*", "1.3.0-rc1") {
		t.Error("* should not match a pre-release version")
	}
}

func TestSatisfiesCaret(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"1.2.3", true},
		{"1.9.9", true},
		{"2.0.0", false},
		{"1.2.2", false},
	}
	for _, c := range cases {
		if got := mustSatisfies(t, "^1.2.3", c.version); got != c.want {
			t.Errorf("^1.2.3 vs %s: got %v want %v", c.version, got, c.want)
		}
	}
}

func TestSatisfiesCaretZeroMajor(t *testing.T) {
	if !mustSatisfies(t, "^0.2.3", "0.2.9") {
		t.Error("^0.2.3 should allow 0.2.9")
	}
	if mustSatisfies(t, "^0.2.3", "0.3.0") {
		t.Error("^0.2.3 should not allow 0.3.0")
	}
}

func TestSatisfiesTilde(t *testing.T) {
	if !mustSatisfies(t, "~1.2", "1.9.0") {
		t.Error("~1.2 should allow 1.9.0")
	}
	if mustSatisfies(t, "~1.2", "2.0.0") {
		t.Error("~1.2 should not allow 2.0.0")
	}
	if !mustSatisfies(t, "~1.2.3", "1.2.9") {
		t.Error("~1.2.3 should allow 1.2.9")
	}
	if mustSatisfies(t, "~1.2.3", "1.3.0") {
		t.Error("~1.2.3 should not allow 1.3.0")
	}
}

func TestSatisfiesHyphenRange(t *testing.T) {
	if !mustSatisfies(t, "1.0 - 2.0", "1.5.0") {
		t.Error("1.0 - 2.0 should allow 1.5.0")
	}
	if mustSatisfies(t, "1.0 - 2.0", "2.0.1") {
		t.Error("1.0 - 2.0 should not allow 2.0.1")
	}
}

func TestSatisfiesCompoundRange(t *testing.T) {
	if !mustSatisfies(t, ">1.0 <2.0", "1.5.0") {
		t.Error(">1.0 <2.0 should allow 1.5.0")
	}
	if mustSatisfies(t, ">1.0 <2.0", "1.0.0") {
		t.Error(">1.0 <2.0 should not allow the lower bound")
	}
}

func TestSatisfiesComparators(t *testing.T) {
	if !mustSatisfies(t, ">=7.4", "8.0.0") {
		t.Error(">=7.4 should allow 8.0.0")
	}
	if mustSatisfies(t, ">=7.4", "7.3.0") {
		t.Error(">=7.4 should not allow 7.3.0")
	}
}

func TestSatisfiesExact(t *testing.T) {
	if !mustSatisfies(t, "1.2.3", "1.2.3") {
		t.Error("exact constraint should match identical version")
	}
	if mustSatisfies(t, "1.2.3", "1.2.4") {
		t.Error("exact constraint should not match a different version")
	}
}

func TestSatisfiesEscapedComparators(t *testing.T) {
	escaped := "\\u003E=7.4"
	if !mustSatisfies(t, escaped, "8.0.0") {
		t.Error("escaped \\u003E= should behave like >=")
	}
}

func TestSatisfiesDeterministic(t *testing.T) {
	a := mustSatisfies(t, "^7.0 | ^8.0", "7.2.3")
	b := mustSatisfies(t, "^7.0 | ^8.0", "7.2.3")
	if a != b {
		t.Error("Satisfies should be deterministic for the same inputs")
	}
}

func TestSatisfiesMalformed(t *testing.T) {
	if _, err := Satisfies("^7.0", "not-a-version"); err == nil {
		t.Fatal("expected error for malformed version")
	}
}
