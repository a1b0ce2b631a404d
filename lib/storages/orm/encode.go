package orm

import (
	"strings"

	"github.com/pescuma/svnstats/lib/utils"
)

func encodeFlag(v bool) string {
	return utils.IIf(v, "Y", "N")
}

func decodeFlag(v string) bool {
	return strings.TrimSpace(v) == "Y"
}

// decodeChar copes with char(1) columns coming back blank padded.
func decodeChar(v string) byte {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	return v[0]
}
