package history

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var defaultBinaryExtensions = []string{
	"doc", "xls", "ppt", "docx", "xlsx", "pptx", "dot", "dotx", "ods", "odm", "odt", "ott", "pdf",
	"o", "a", "obj", "lib", "dll", "so", "exe",
	"jar", "zip", "z", "gz", "tar", "rar", "7z",
	"pdb", "idb", "ilk", "bsc", "ncb", "sbr", "pch",
	"bmp", "dib", "jpg", "jpeg", "png", "gif", "ico", "pcd", "wmf", "emf", "xcf", "tiff", "xpm",
	"gho", "mp3", "wma", "wmv", "wav", "avi",
}

func DefaultBinaryPatterns() []string {
	return lo.Map(defaultBinaryExtensions, func(ext string, _ int) string {
		return "**/*." + ext
	})
}

// BinaryMatcher decides which files never get line counts.
type BinaryMatcher struct {
	patterns []string
}

func NewBinaryMatcher(patterns []string) (*BinaryMatcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultBinaryPatterns()
	}

	result := &BinaryMatcher{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p), "/"))
		if p == "" {
			continue
		}

		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid binary file pattern: %v", p)
		}

		result.patterns = append(result.patterns, p)
	}

	return result, nil
}

func (m *BinaryMatcher) IsBinary(path string) bool {
	name := strings.ToLower(strings.TrimPrefix(path, "/"))

	return lo.SomeBy(m.patterns, func(p string) bool {
		matched, err := doublestar.Match(p, name)
		return err == nil && matched
	})
}
