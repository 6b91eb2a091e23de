// Package platform detects the local PHP runtime's version and loaded
// extensions by shelling out to the php interpreter (spec §6, §7).
package platform

import (
	"bytes"
	"os/exec"
	"regexp"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// Runner abstracts process invocation so tests can stub it out without
// requiring a real php binary on PATH.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs real subprocesses via os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.Bytes(), err
	}
	return out.Bytes(), nil
}

var versionPattern = regexp.MustCompile(`PHP (\d+\.\d+\.\d+)`)

// DetectVersion invokes "php -v" and extracts the first PHP version
// match (spec §6).
func DetectVersion(r Runner) (string, error) {
	out, err := r.Run("php", "-v")
	if err != nil {
		return "", errs.Wrap(errs.RuntimeDetectionFailed, err, "invoking php -v")
	}
	m := versionPattern.FindSubmatch(out)
	if m == nil {
		return "", errs.Of(errs.RuntimeDetectionFailed, "could not parse PHP version from php -v output")
	}
	return string(m[1]), nil
}

// DetectExtensions invokes "php -m" and returns one extension name per
// non-blank, non-header line (spec §6).
func DetectExtensions(r Runner) ([]string, error) {
	out, err := r.Run("php", "-m")
	if err != nil {
		return nil, errs.Wrap(errs.RuntimeDetectionFailed, err, "invoking php -m")
	}

	var exts []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		exts = append(exts, line)
	}
	return exts, nil
}
