package autoload

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/phpp-dev/phpp/internal/errs"
)

var classDeclPattern = regexp.MustCompile(`^\s*(?:abstract\s+|final\s+)?(?:class|interface|trait|enum)\s+([A-Za-z_][A-Za-z0-9_]*)`)
var namespacePattern = regexp.MustCompile(`^\s*namespace\s+([A-Za-z0-9_\\]+)\s*;`)

// ScanClassmap walks dir (a locked package's extracted vendor
// directory) looking for .php files and records each declared
// class/interface/trait/enum's fully-qualified name, mapped to its
// path relative to vendorDir (spec SPEC_FULL §4.6 supplement). It
// mirrors the teacher's directory-walking idiom (karrick/godirwalk)
// rather than filepath.Walk.
func ScanClassmap(vendorDir, pkgDir string) (map[string]string, error) {
	classes := make(map[string]string)

	err := godirwalk.Walk(pkgDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() || !strings.HasSuffix(osPathname, ".php") {
				return nil
			}
			found, err := scanFileForClasses(osPathname)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(vendorDir, osPathname)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			for _, fqcn := range found {
				classes[fqcn] = rel
			}
			return nil
		},
	})
	if err != nil {
		return nil, errs.Wrap(errs.LocalIo, err, "scanning %s for classes", pkgDir)
	}
	return classes, nil
}

func scanFileForClasses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var namespace string
	var found []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if m := namespacePattern.FindStringSubmatch(line); m != nil {
			namespace = m[1]
			continue
		}
		if m := classDeclPattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if namespace != "" {
				name = namespace + `\` + name
			}
			found = append(found, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

// EmitClassmap renders autoload_classmap.php: a flat fully-qualified
// class name -> vendor-relative path map, sorted by class name for a
// deterministic diff-friendly output.
func EmitClassmap(classmap map[string]string) string {
	names := make([]string, 0, len(classmap))
	for name := range classmap {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<?php\n\n// autoload_classmap.php @generated by phpp\n\n")
	b.WriteString("$vendorDir = dirname(__DIR__);\n$baseDir = dirname($vendorDir);\n\n")
	b.WriteString("return array(\n")
	for _, name := range names {
		fmt.Fprintf(&b, "    '%s' => $vendorDir . '/%s',\n", strings.ReplaceAll(name, `\`, `\\`), classmap[name])
	}
	b.WriteString(");\n")
	return b.String()
}
