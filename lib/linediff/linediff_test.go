package linediff

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountSameText(t *testing.T) {
	added, deleted := Count("a\nb\n", "a\nb\n", time.Second)

	assert.Equal(t, 0, added)
	assert.Equal(t, 0, deleted)
}

func TestCountChangedLine(t *testing.T) {
	added, deleted := Count("a\nb\nc\n", "a\nx\nc\nd\n", time.Second)

	assert.Equal(t, 2, added)
	assert.Equal(t, 1, deleted)
}

func TestCountFromEmpty(t *testing.T) {
	added, deleted := Count("", "a\nb\nc", time.Second)

	assert.Equal(t, 3, added)
	assert.Equal(t, 0, deleted)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("a"))
	assert.Equal(t, 2, CountLines("a\nb\n"))
	assert.Equal(t, 3, CountLines("a\nb\nc"))
}

func TestCountUnified(t *testing.T) {
	diff := `Index: trunk/a.txt
===================================================================
--- trunk/a.txt	(revision 4)
+++ trunk/a.txt	(revision 5)
@@ -1,3 +1,4 @@
 a
-b
+x
+y
 c
Index: trunk/b.txt
===================================================================
--- trunk/b.txt	(nonexistent)
+++ trunk/b.txt	(revision 5)
@@ -0,0 +1,2 @@
+1
+2
`

	added, deleted, err := CountUnified(strings.NewReader(diff))

	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 1, deleted)
}
