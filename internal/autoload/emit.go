package autoload

import (
	"fmt"
	"strings"
)

func escapePrefix(prefix string) string {
	return strings.ReplaceAll(prefix, `\`, `\\`)
}

func varFor(origin Origin) string {
	if origin == Vendor {
		return "$vendorDir"
	}
	return "$baseDir"
}

func stripTrailingSlash(p string) string {
	return strings.TrimSuffix(p, "/")
}

// EmitPsr4 renders autoload_psr4.php's dynamic form (spec §4.6).
func EmitPsr4(m *Psr4Map) string {
	var b strings.Builder
	b.WriteString("<?php\n\n// autoload_psr4.php @generated by phpp\n\n")
	b.WriteString("$vendorDir = dirname(__DIR__);\n$baseDir = dirname($vendorDir);\n\n")
	b.WriteString("return array(\n")

	for _, prefix := range m.Prefixes() {
		fmt.Fprintf(&b, "    '%s' => array(\n", escapePrefix(prefix))
		for _, d := range m.Dirs(prefix) {
			fmt.Fprintf(&b, "        %s . '%s',\n", varFor(d.Origin), stripTrailingSlash(d.Path))
		}
		b.WriteString("    ),\n")
	}
	b.WriteString(");\n")
	return b.String()
}

// EmitFiles renders autoload_files.php's dynamic form (spec §4.6).
func EmitFiles(m *FilesMap) string {
	var b strings.Builder
	b.WriteString("<?php\n\n// autoload_files.php @generated by phpp\n\n")
	b.WriteString("$vendorDir = dirname(__DIR__);\n$baseDir = dirname($vendorDir);\n\n")
	b.WriteString("return array(\n")

	for _, key := range m.Keys() {
		e, _ := m.Get(key)
		fmt.Fprintf(&b, "    '%s' => %s . '%s',\n", key, varFor(e.Origin), e.Path)
	}
	b.WriteString(");\n")
	return b.String()
}

func staticDirExpr(origin Origin, path string) string {
	trimmed := stripTrailingSlash(path)
	if origin == Vendor {
		return fmt.Sprintf("__DIR__ . '/..' . '%s'", trimmed)
	}
	return fmt.Sprintf("__DIR__ . '/../..' . '%s'", trimmed)
}

// staticPsr4LengthIndex renders the first-character -> prefix -> length
// table (spec §4.6's static combined map, part b).
func staticPsr4LengthIndex(m *Psr4Map) string {
	byFirstChar := make(map[byte][]string)
	var firstChars []byte
	for _, prefix := range m.Prefixes() {
		c := prefix[0]
		if _, ok := byFirstChar[c]; !ok {
			firstChars = append(firstChars, c)
		}
		byFirstChar[c] = append(byFirstChar[c], prefix)
	}
	sortReverseBytes(firstChars)

	var b strings.Builder
	for _, c := range firstChars {
		fmt.Fprintf(&b, "        '%c' => array (\n", c)
		prefixes := append([]string(nil), byFirstChar[c]...)
		sortReverse(prefixes)
		for _, prefix := range prefixes {
			fmt.Fprintf(&b, "            '%s' => %d,\n", escapePrefix(prefix), len(prefix))
		}
		b.WriteString("        ),\n")
	}
	return b.String()
}

// staticPsr4Dirs renders the PSR-4 directory map with numeric array
// keys (spec §4.6's static combined map, part c).
func staticPsr4Dirs(m *Psr4Map) string {
	var b strings.Builder
	for _, prefix := range m.Prefixes() {
		fmt.Fprintf(&b, "        '%s' => array(\n", escapePrefix(prefix))
		for i, d := range m.Dirs(prefix) {
			fmt.Fprintf(&b, "            %d => %s,\n", i, staticDirExpr(d.Origin, d.Path))
		}
		b.WriteString("        ),\n")
	}
	return b.String()
}

// staticFiles renders the files map with static __DIR__-relative path
// expressions (spec §4.6's static combined map, part a).
func staticFiles(m *FilesMap) string {
	var b strings.Builder
	for _, key := range m.Keys() {
		e, _ := m.Get(key)
		if e.Origin == Vendor {
			fmt.Fprintf(&b, "        '%s' => __DIR__ . '/..' . '%s',\n", key, e.Path)
		} else {
			fmt.Fprintf(&b, "        '%s' => __DIR__ . '/../..' . '%s',\n", key, e.Path)
		}
	}
	return b.String()
}

// EmitStatic renders autoload_static.php by substituting the three
// generated sections into the static-map template (spec §4.6).
func EmitStatic(files *FilesMap, psr4 *Psr4Map) string {
	content := staticMapTemplate
	content = strings.ReplaceAll(content, "__FILES_CONTENT__", staticFiles(files))
	content = strings.ReplaceAll(content, "__PSR4_LENGTH__", staticPsr4LengthIndex(psr4))
	content = strings.ReplaceAll(content, "__PSR4_DIRS__", staticPsr4Dirs(psr4))
	return content
}

func sortReverseBytes(s []byte) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] < s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
