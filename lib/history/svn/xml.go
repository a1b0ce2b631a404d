package svn

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
)

type xmlLog struct {
	XMLName xml.Name      `xml:"log"`
	Entries []xmlLogEntry `xml:"logentry"`
}

type xmlLogEntry struct {
	Revision int       `xml:"revision,attr"`
	Author   string    `xml:"author"`
	Date     string    `xml:"date"`
	Message  string    `xml:"msg"`
	Paths    *xmlPaths `xml:"paths"`
}

type xmlPaths struct {
	Paths []xmlPath `xml:"path"`
}

type xmlPath struct {
	Action       string `xml:"action,attr"`
	Kind         string `xml:"kind,attr"`
	CopyFromPath string `xml:"copyfrom-path,attr"`
	CopyFromRev  int    `xml:"copyfrom-rev,attr"`
	Path         string `xml:",chardata"`
}

type xmlInfo struct {
	XMLName xml.Name       `xml:"info"`
	Entries []xmlInfoEntry `xml:"entry"`
}

type xmlInfoEntry struct {
	Kind       string `xml:"kind,attr"`
	Path       string `xml:"path,attr"`
	Revision   int    `xml:"revision,attr"`
	URL        string `xml:"url"`
	Repository struct {
		Root string `xml:"root"`
		UUID string `xml:"uuid"`
	} `xml:"repository"`
	Commit struct {
		Revision int `xml:"revision,attr"`
	} `xml:"commit"`
}

type xmlLists struct {
	XMLName xml.Name  `xml:"lists"`
	Lists   []xmlList `xml:"list"`
}

type xmlList struct {
	Path    string         `xml:"path,attr"`
	Entries []xmlListEntry `xml:"entry"`
}

type xmlListEntry struct {
	Kind string `xml:"kind,attr"`
	Name string `xml:"name"`
}

func parseLog(data []byte) ([]*history.Revision, error) {
	var log xmlLog
	err := xml.Unmarshal(data, &log)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing svn log")
	}

	result := make([]*history.Revision, 0, len(log.Entries))
	for _, e := range log.Entries {
		rev, err := toRevision(&e)
		if err != nil {
			return nil, err
		}

		result = append(result, rev)
	}

	return result, nil
}

func toRevision(e *xmlLogEntry) (*history.Revision, error) {
	rev := history.NewRevision(e.Revision)
	rev.Author = e.Author
	rev.Message = e.Message

	if e.Date != "" {
		date, err := time.Parse(time.RFC3339Nano, e.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "r%v: invalid date %v", e.Revision, e.Date)
		}
		rev.Date = date
	}

	// Revisions without changed paths are unreadable or empty, like r0
	if e.Paths == nil || len(e.Paths.Paths) == 0 {
		rev.Valid = false
		return rev, nil
	}

	for _, p := range e.Paths.Paths {
		change, err := toChangeType(p.Action)
		if err != nil {
			return nil, errors.Wrapf(err, "r%v: %v", e.Revision, p.Path)
		}

		pathType := toPathType(p.Kind)

		path := history.NormalizePath(strings.TrimSpace(p.Path))
		if pathType == model.PathDirectory {
			path = history.DirPath(path)
		}

		c := rev.AddChange(path, change, pathType)

		if p.CopyFromPath != "" {
			from := history.NormalizePath(p.CopyFromPath)
			if pathType == model.PathDirectory {
				from = history.DirPath(from)
			}

			c.CopiedFrom(from, p.CopyFromRev)
		}
	}

	return rev, nil
}

func toChangeType(action string) (model.ChangeType, error) {
	switch action {
	case "A":
		return model.ChangeAdded, nil
	case "M", "R":
		return model.ChangeModified, nil
	case "D":
		return model.ChangeDeleted, nil
	default:
		return 0, errors.Errorf("unknown svn action: %v", action)
	}
}

func toPathType(kind string) model.PathType {
	switch kind {
	case "file":
		return model.PathFile
	case "dir":
		return model.PathDirectory
	default:
		return model.PathUnknown
	}
}

// applyKind sets a kind found after parsing, keeping directory paths with a
// trailing separator.
func applyKind(c *history.Change, kind string) {
	c.PathType = toPathType(kind)
	if c.PathType != model.PathDirectory {
		return
	}

	c.Path = history.DirPath(c.Path)
	if c.CopyFromPath != "" {
		c.CopyFromPath = history.DirPath(c.CopyFromPath)
	}
}

func parseInfo(data []byte) (*xmlInfoEntry, error) {
	var info xmlInfo
	err := xml.Unmarshal(data, &info)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing svn info")
	}

	if len(info.Entries) == 0 {
		return nil, errors.New("svn info returned no entries")
	}

	return &info.Entries[0], nil
}

// parseList returns the files of a recursive listing, prefixed with dir.
func parseList(data []byte, dir string) ([]string, error) {
	var lists xmlLists
	err := xml.Unmarshal(data, &lists)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing svn list")
	}

	dir = history.DirPath(dir)

	var result []string
	for _, l := range lists.Lists {
		for _, e := range l.Entries {
			if e.Kind != "file" {
				continue
			}

			result = append(result, history.NormalizePath(dir+e.Name))
		}
	}

	return result, nil
}
