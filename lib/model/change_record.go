package model

import "strings"

const DirSeparator = "/"

type ChangeRecord struct {
	Revno int

	Path   string
	PathID ID

	ChangeType ChangeType
	PathType   PathType

	CopyFromPath   string
	CopyFromPathID *ID
	CopyFromRevno  *int

	LinesAdded       int
	LinesDeleted     int
	LineCountUpdated bool

	EntryType EntryType
}

func NewChangeRecord(revno int, path string, change ChangeType, pathType PathType) *ChangeRecord {
	return &ChangeRecord{
		Revno:      revno,
		Path:       path,
		ChangeType: change,
		PathType:   pathType,
		EntryType:  EntryReal,
	}
}

func (c *ChangeRecord) IsDirectory() bool {
	return c.PathType == PathDirectory
}

// ResolvePathType never leaves a record as PathUnknown: paths with a trailing
// separator are directories, everything else is a file.
func ResolvePathType(path string, pathType PathType) PathType {
	if pathType != PathUnknown {
		return pathType
	}

	if strings.HasSuffix(path, DirSeparator) {
		return PathDirectory
	}

	return PathFile
}

// UnresolvedChange is a stored record that still waits for its line counts.
type UnresolvedChange struct {
	Revno      int
	PathID     ID
	Path       string
	ChangeType ChangeType
	PathType   PathType
}
