package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// stripFirstComponent removes the first path segment of p, the
// wrapper directory a registry-built archive conventionally puts
// every entry under (spec §4.5 step 6). An entry with no separator
// (already at the top of the wrapper) contributes nothing.
func stripFirstComponent(p string) string {
	p = filepath.ToSlash(p)
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return ""
	}
	return p[idx+1:]
}

// escapesDestination reports whether the cleaned, joined path p
// resolves outside of dest, guarding against a zip-slip entry
// (spec §4.5 step 6: "skip entries whose path escapes the destination").
func escapesDestination(dest, p string) bool {
	rel, err := filepath.Rel(dest, p)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Extract opens the zip archive at archivePath and writes its entries,
// starting from index 1, into destRoot/packageName, with each entry's
// first path component stripped (spec §4.5 steps 5-6). The archive is
// always read from disk.
func Extract(archivePath, destRoot, packageName string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "opening archive %s", archivePath)
	}
	defer r.Close()

	dest := filepath.Join(destRoot, filepath.FromSlash(packageName))

	for i, f := range r.File {
		if i == 0 {
			// The first entry is the wrapper directory itself and is elided.
			continue
		}

		relPath := stripFirstComponent(f.Name)
		if relPath == "" {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(relPath))
		if escapesDestination(dest, target) {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errs.Wrap(errs.LocalIo, err, "creating directory %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errs.Wrap(errs.LocalIo, err, "creating directory %s", filepath.Dir(target))
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "opening archive entry %s", f.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating %s", target)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing %s", target)
	}
	return nil
}
