package svn

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
)

const kindlessLogXML = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="12">
<author>alice</author>
<date>2020-03-04T05:06:07.123456Z</date>
<paths>
<path action="D" kind="">/trunk/old</path>
<path action="A" kind="" copyfrom-path="/trunk/lib" copyfrom-rev="11">/branches/lib</path>
<path action="M" kind="">/trunk/a.txt</path>
</paths>
<msg>old server</msg>
</logentry>
</log>`

func infoXML(kind string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<info>
<entry kind="` + kind + `" path="x" revision="12">
<url>file:///repo/x</url>
<repository><root>file:///repo</root></repository>
<commit revision="12"></commit>
</entry>
</info>`
}

// fakeSvn writes a script that answers log and info like an svn server that
// does not report path kinds.
func fakeSvn(t *testing.T) (string, string) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	dir := t.TempDir()
	files := map[string]string{
		"log.xml":  kindlessLogXML,
		"root.xml": infoXML("dir"),
		"dir.xml":  infoXML("dir"),
		"file.xml": infoXML("file"),
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	calls := filepath.Join(dir, "calls.txt")
	script := `#!/bin/sh
echo "$*" >> "` + calls + `"
case "$1" in
log) cat "` + dir + `/log.xml" ;;
info)
  case "$*" in
  *a.txt@*) cat "` + dir + `/file.xml" ;;
  *@*) cat "` + dir + `/dir.xml" ;;
  *) cat "` + dir + `/root.xml" ;;
  esac ;;
*) exit 1 ;;
esac
`
	bin := filepath.Join(dir, "svn")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o700))

	return bin, calls
}

func TestRevisionsResolveMissingKinds(t *testing.T) {
	bin, calls := fakeSvn(t)

	p, err := NewProvider(consoles.NewWriterConsole(io.Discard, false), "file:///repo", &history.Options{})
	require.NoError(t, err)
	p.client.binary = bin

	var revs []*history.Revision
	err = p.Revisions(context.Background(), 12, 12, func(rev *history.Revision) error {
		revs = append(revs, rev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Len(t, revs[0].Changes, 3)

	deleted := revs[0].Changes[0]
	assert.Equal(t, "/trunk/old/", deleted.Path)
	assert.Equal(t, model.PathDirectory, deleted.PathType)

	added := revs[0].Changes[1]
	assert.Equal(t, "/branches/lib/", added.Path)
	assert.Equal(t, model.PathDirectory, added.PathType)
	assert.Equal(t, "/trunk/lib/", added.CopyFromPath)

	assert.Equal(t, "/trunk/a.txt", revs[0].Changes[2].Path)
	assert.Equal(t, model.PathFile, revs[0].Changes[2].PathType)

	data, err := os.ReadFile(calls)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "file:///repo/trunk/old@11")
	assert.Contains(t, log, "file:///repo/branches/lib@12")
	assert.True(t, strings.Contains(log, "file:///repo/trunk/a.txt@12"))
}
