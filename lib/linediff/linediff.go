package linediff

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const DefaultTimeout = 10 * time.Second

// Count returns the number of lines added and deleted to go from src to dst.
func Count(src, dst string, timeout time.Duration) (int, int) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout

	a, b := toLineRunes(src, dst)

	added := 0
	deleted := 0
	for _, d := range dmp.DiffMainRunes(a, b, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}

	return added, deleted
}

func CountLines(text string) int {
	if text == "" {
		return 0
	}

	result := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		result++
	}
	return result
}

// CountUnified counts the +/- lines of a unified diff, ignoring file headers.
func CountUnified(r io.Reader) (int, int, error) {
	added := 0
	deleted := 0
	inHunk := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case strings.HasPrefix(line, "Index: "), strings.HasPrefix(line, "diff "):
			inHunk = false
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			deleted++
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, 0, errors.Wrap(err, "error reading diff")
	}

	return added, deleted, nil
}

// toLineRunes maps each distinct line to a rune so the diff runs per line.
func toLineRunes(text1, text2 string) ([]rune, []rune) {
	index := make(map[string]int)
	return textToRunes(text1, index), textToRunes(text2, index)
}

func textToRunes(text string, index map[string]int) []rune {
	if text == "" {
		return nil
	}

	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	result := make([]rune, len(lines))
	for i, line := range lines {
		v, ok := index[line]
		if !ok {
			v = len(index)
			index[line] = v
		}

		result[i] = rune(v)
	}
	return result
}
