package history

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath removes duplicated separators and '.' entries, keeping the
// leading and trailing separators, and converts the path to NFC.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	dir := IsDirPath(p)

	p = norm.NFC.String(p)
	p = path.Clean(p)

	if p == "." {
		p = ""
	}

	if dir && !IsDirPath(p) {
		p += "/"
	}

	return p
}

func HasDirPrefix(p, dir string) bool {
	return strings.HasPrefix(p, DirPath(dir))
}
