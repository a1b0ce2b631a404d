package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD (also inside svn style braces) or RFC 3339.
// Dates without a zone are local.
func parseDate(text string) (*time.Time, error) {
	text = strings.Trim(strings.TrimSpace(text), "{}")
	if text == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(dateLayout, text, time.Local)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339, text)
	if err == nil {
		return &t, nil
	}

	return nil, errors.Errorf("invalid date: %v (expected YYYY-MM-DD)", text)
}
