package model

import "fmt"

type ChangeType byte

const (
	ChangeAdded    ChangeType = 'A'
	ChangeModified ChangeType = 'M'
	ChangeDeleted  ChangeType = 'D'
)

func (c ChangeType) String() string {
	return string(c)
}

func (c ChangeType) Valid() bool {
	return c == ChangeAdded || c == ChangeModified || c == ChangeDeleted
}

func ParseChangeType(s string) (ChangeType, error) {
	if len(s) == 1 {
		c := ChangeType(s[0])
		if c.Valid() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid change type: %q", s)
}

type PathType byte

const (
	PathFile      PathType = 'F'
	PathDirectory PathType = 'D'
	PathUnknown   PathType = 'U'
)

func (p PathType) String() string {
	return string(p)
}

func ParsePathType(s string) PathType {
	switch s {
	case "F":
		return PathFile
	case "D":
		return PathDirectory
	default:
		return PathUnknown
	}
}

// EntryType tells records reported by the history provider apart from the
// ones inferred from directory copies and deletes.
type EntryType byte

const (
	EntryReal      EntryType = 'R'
	EntrySynthetic EntryType = 'D'
)

func (e EntryType) String() string {
	return string(e)
}
