package archive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/phpp-dev/phpp/internal/errs"
)

// RemovePackage deletes destRoot/packageName and then removes its
// empty parent directories up to (but not including) destRoot, e.g.
// after deleting vendor/foo/bar it also removes vendor/foo if that
// directory is now empty (spec §4.8: "delete the removed package
// directories and their empty parents").
func RemovePackage(destRoot, packageName string) error {
	target := filepath.Join(destRoot, filepath.FromSlash(packageName))
	if err := os.RemoveAll(target); err != nil {
		return errs.Wrap(errs.LocalIo, err, "removing %s", target)
	}

	dir := filepath.Dir(target)
	for dir != filepath.Clean(destRoot) && strings.HasPrefix(dir, filepath.Clean(destRoot)+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
