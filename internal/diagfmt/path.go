package diagfmt

import (
	"path/filepath"
	"strings"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return filepath.ToSlash(path)
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 != nil || err2 != nil {
			return filepath.ToSlash(path)
		}
		rel, err := filepath.Rel(absBase, absPath)
		if err != nil || (mode == PathModeAuto && strings.HasPrefix(rel, "..")) {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
