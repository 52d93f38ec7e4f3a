package sheetsync

import (
	"fmt"
	"regexp"
	"strings"
)

var sheetURL = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// ExtractID returns the spreadsheet id from a URL such as
// https://docs.google.com/spreadsheets/d/<id>/edit.
func ExtractID(url string) (string, error) {
	match := sheetURL.FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 {
		return "", fmt.Errorf("%w: %q - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", ErrInvalidURL, url)
	}

	return match[1], nil
}
