package semver

import (
	"strconv"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// unescapeConstraint replaces the registry's escaped > / <
// sequences with the literal characters they encode. Some registries
// emit these in raw JSON string values rather than decoding them, a
// quirk preserved here rather than fixed upstream.
func unescapeConstraint(c string) string {
	r := strings.NewReplacer(
		"\\u003E", ">", "\\u003e", ">",
		"\\u003C", "<", "\\u003c", "<",
	)
	return r.Replace(c)
}

// Satisfies reports whether version satisfies constraint, per the
// Composer constraint grammar described in spec §4.1.
func Satisfies(constraint, version string) (bool, error) {
	ver, err := ParseVersion(version)
	if err != nil {
		return false, err
	}

	c := unescapeConstraint(constraint)
	c = strings.TrimSpace(c)

	if strings.Contains(c, "||") {
		return evalAlternatives(strings.Split(c, "||"), ver)
	}
	if strings.Contains(c, "|") {
		return evalAlternatives(strings.Split(c, "|"), ver)
	}
	if idx := findHyphenRange(c); idx >= 0 {
		lo := strings.TrimSpace(c[:idx])
		hi := strings.TrimSpace(c[idx+3:])
		return evalConjunction([]string{">=" + lo, "<=" + hi}, ver)
	}
	if fields := splitCompoundRange(c); fields != nil {
		return evalConjunction(fields, ver)
	}
	return evalAtom(c, ver)
}

// evalAlternatives evaluates each "||"/"|"-separated alternative
// right-to-left, short-circuiting on the first match, per spec §4.1.
func evalAlternatives(parts []string, ver Version) (bool, error) {
	var firstErr error
	for i := len(parts) - 1; i >= 0; i-- {
		ok, err := evalAtomOrConjunction(strings.TrimSpace(parts[i]), ver)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	if firstErr != nil {
		return false, firstErr
	}
	return false, nil
}

func evalAtomOrConjunction(c string, ver Version) (bool, error) {
	if idx := findHyphenRange(c); idx >= 0 {
		lo := strings.TrimSpace(c[:idx])
		hi := strings.TrimSpace(c[idx+3:])
		return evalConjunction([]string{">=" + lo, "<=" + hi}, ver)
	}
	if fields := splitCompoundRange(c); fields != nil {
		return evalConjunction(fields, ver)
	}
	return evalAtom(c, ver)
}

// findHyphenRange locates a top-level " - " range separator, or -1.
func findHyphenRange(c string) int {
	return strings.Index(c, " - ")
}

// splitCompoundRange splits a space-separated compound range such as
// ">=7.0 <8.0" into its individual comparator fields. Returns nil if c
// does not look like a compound range (fewer than two fields, or not
// all fields carry a comparator).
func splitCompoundRange(c string) []string {
	fields := strings.Fields(c)
	if len(fields) < 2 {
		return nil
	}
	for _, f := range fields {
		if !startsWithComparator(f) {
			return nil
		}
	}
	return fields
}

func startsWithComparator(s string) bool {
	for _, op := range []string{">=", "<=", ">", "<", "="} {
		if strings.HasPrefix(s, op) {
			return true
		}
	}
	return false
}

func evalConjunction(atoms []string, ver Version) (bool, error) {
	for _, a := range atoms {
		ok, err := evalAtom(strings.TrimSpace(a), ver)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evalAtom evaluates a single constraint atom: "*", a caret, a tilde,
// a comparator form, or a bare exact version.
func evalAtom(c string, ver Version) (bool, error) {
	c = strings.TrimSpace(c)
	switch {
	case c == "" || c == "*":
		return ver.Stable(), nil
	case strings.HasPrefix(c, "^"):
		return evalCaret(c[1:], ver)
	case strings.HasPrefix(c, "~"):
		return evalTilde(c[1:], ver)
	case strings.HasPrefix(c, ">="):
		return cmpAtom(c[2:], ver, func(r int) bool { return r >= 0 })
	case strings.HasPrefix(c, "<="):
		return cmpAtom(c[2:], ver, func(r int) bool { return r <= 0 })
	case strings.HasPrefix(c, ">"):
		return cmpAtom(c[1:], ver, func(r int) bool { return r > 0 })
	case strings.HasPrefix(c, "<"):
		return cmpAtom(c[1:], ver, func(r int) bool { return r < 0 })
	case strings.HasPrefix(c, "="):
		return cmpAtom(c[1:], ver, func(r int) bool { return r == 0 })
	default:
		return cmpAtom(c, ver, func(r int) bool { return r == 0 })
	}
}

func cmpAtom(vs string, ver Version, ok func(int) bool) (bool, error) {
	bound, err := ParseVersion(strings.TrimSpace(vs))
	if err != nil {
		return false, errs.Wrap(errs.MalformedConstraint, err, "parsing constraint bound %q", vs)
	}
	return ok(ver.Compare(bound)), nil
}

// components parses a dotted version prefix (2 or 3 numeric parts) into
// its integer components, left-padding missing trailing parts with 0.
func components(s string) ([3]int64, int, error) {
	var out [3]int64
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			break
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return out, 0, errs.Of(errs.MalformedConstraint, "non-numeric version component %q", p)
		}
		out[i] = n
	}
	return out, len(parts), nil
}

// evalCaret implements Composer's caret range: ^1.2.3 allows
// >=1.2.3 <2.0.0; ^0.2.3 allows >=0.2.3 <0.3.0; ^0.0.3 allows
// >=0.0.3 <0.0.4. The upper bound increments the first nonzero
// component, or the last given component if all given are zero.
func evalCaret(vs string, ver Version) (bool, error) {
	lo, err := ParseVersion(strings.TrimSpace(vs))
	if err != nil {
		return false, errs.Wrap(errs.MalformedConstraint, err, "parsing caret bound %q", vs)
	}
	if ver.Compare(lo) < 0 {
		return false, nil
	}
	parts, n, err := components(strings.TrimSpace(vs))
	if err != nil {
		return false, err
	}
	upper := parts
	switch {
	case parts[0] != 0:
		upper = [3]int64{parts[0] + 1, 0, 0}
	case parts[1] != 0:
		upper = [3]int64{0, parts[1] + 1, 0}
	case n >= 3:
		upper = [3]int64{0, 0, parts[2] + 1}
	case n == 2:
		upper = [3]int64{0, 1, 0}
	default:
		upper = [3]int64{1, 0, 0}
	}
	hi, err := ParseVersion(itoa3(upper))
	if err != nil {
		return false, err
	}
	return ver.Compare(hi) < 0, nil
}

// evalTilde implements Composer's tilde range: ~1.2 allows
// >=1.2.0 <2.0.0; ~1.2.3 allows >=1.2.3 <1.3.0. The upper bound
// increments the next-to-last given component and zeroes the rest.
func evalTilde(vs string, ver Version) (bool, error) {
	lo, err := ParseVersion(strings.TrimSpace(vs))
	if err != nil {
		return false, errs.Wrap(errs.MalformedConstraint, err, "parsing tilde bound %q", vs)
	}
	if ver.Compare(lo) < 0 {
		return false, nil
	}
	parts, n, err := components(strings.TrimSpace(vs))
	if err != nil {
		return false, err
	}
	var upper [3]int64
	if n >= 3 {
		upper = [3]int64{parts[0], parts[1] + 1, 0}
	} else {
		upper = [3]int64{parts[0] + 1, 0, 0}
	}
	hi, err := ParseVersion(itoa3(upper))
	if err != nil {
		return false, err
	}
	return ver.Compare(hi) < 0, nil
}

func itoa3(p [3]int64) string {
	return strconv.FormatInt(p[0], 10) + "." + strconv.FormatInt(p[1], 10) + "." + strconv.FormatInt(p[2], 10)
}
