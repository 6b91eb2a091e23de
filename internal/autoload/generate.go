package autoload

import (
	"os"
	"path/filepath"

	"github.com/phpp-dev/phpp/internal/errs"
)

// Write emits the full loader bundle into vendorDir/composer and
// vendorDir/autoload.php, given the merged psr4/files maps and the
// classmap entries already scanned for the locked set (spec §4.6).
func Write(vendorDir, projectPath string, psr4 *Psr4Map, files *FilesMap, classmap map[string]string) error {
	composerDir := filepath.Join(vendorDir, "composer")
	if err := os.MkdirAll(composerDir, 0o755); err != nil {
		return errs.Wrap(errs.LocalIo, err, "creating %s", composerDir)
	}

	suffix := InstallSuffix(projectPath)

	writes := map[string]string{
		"autoload_psr4.php":     EmitPsr4(psr4),
		"autoload_files.php":    EmitFiles(files),
		"autoload_static.php":   EmitStatic(files, psr4),
		"autoload_classmap.php": EmitClassmap(classmap),
		"autoload_real.php":     RenderAutoloadReal(suffix),
		"ClassLoader.php":       ClassLoaderSource(),
		"InstalledVersions.php": InstalledVersionsSource(),
		"platform_check.php":    PlatformCheckSource(),
	}
	for name, content := range writes {
		p := filepath.Join(composerDir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return errs.Wrap(errs.LocalIo, err, "writing %s", p)
		}
	}

	entry := filepath.Join(vendorDir, "autoload.php")
	if err := os.WriteFile(entry, []byte(RenderAutoloadEntry(suffix)), 0o644); err != nil {
		return errs.Wrap(errs.LocalIo, err, "writing %s", entry)
	}

	return nil
}
