package sheetsync

import "strings"

// IsKinoaCompany reports whether a project's company uses the sheet sync
// format: the trimmed, lower-cased name must contain both "kinoa" and "tiltak".
func IsKinoaCompany(company string) bool {
	c := strings.ToLower(strings.TrimSpace(company))
	return strings.Contains(c, "kinoa") && strings.Contains(c, "tiltak")
}
