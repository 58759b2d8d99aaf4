package semantic

import (
	"regexp"
	"strconv"
)

// idPatterns are tried in order; the first hit wins. Extraction is purely
// local and never depends on an external service.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)id\s+(\d+)`),
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`(?i)id:\s*(\d+)`),
	regexp.MustCompile(`(?i)number\s+(\d+)`),
	regexp.MustCompile(`(?i)with\s+id\s+(\d+)`),
	regexp.MustCompile(`(?i)id\s*=\s*(\d+)`),
}

// ExtractID scans query text for an explicit integer row identifier
// ("id 5", "#5", "ID: 5", "number 5", "id=5"). Returns ok=false when no
// pattern matches.
func ExtractID(query string) (int64, bool) {
	for _, pattern := range idPatterns {
		m := pattern.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}
