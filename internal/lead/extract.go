// ABOUTME: Heuristic extraction of contact-lead fragments from conversation text
// ABOUTME: Matches keyword markers (name, email, need) through the end of the line

package lead

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMarkers are the keywords that start a lead fragment. French and
// English spellings are both recognised.
var DefaultMarkers = []string{
	"prénom",
	"nom",
	"email",
	"besoin",
	"first name",
	"last name",
	"need",
}

var defaultExtractor = &Extractor{pattern: compile(DefaultMarkers)}

// Extractor finds lead fragments in free text. It is safe for concurrent use.
type Extractor struct {
	pattern *regexp.Regexp
}

// New builds an Extractor for the given markers. Matching is case-insensitive.
// Empty markers are ignored; with no markers at all the defaults are used.
func New(markers ...string) *Extractor {
	pattern := compile(markers)
	if pattern == nil {
		return defaultExtractor
	}
	return &Extractor{pattern: pattern}
}

// compile returns nil when no usable marker is given.
func compile(markers []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		cleaned = append(cleaned, regexp.QuoteMeta(m))
	}
	if len(cleaned) == 0 {
		return nil
	}

	// Longest first so "last name" wins over "name" style overlaps at the same offset.
	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	return regexp.MustCompile(`(?i)(?:` + strings.Join(cleaned, "|") + `).+`)
}

// Extract returns every fragment that starts with a marker and runs to the end
// of its line, joined by newlines in order of appearance. The boolean is false
// when nothing matched.
func (e *Extractor) Extract(text string) (string, bool) {
	matches := e.pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	for i, m := range matches {
		matches[i] = strings.TrimRight(m, "\r")
	}
	return strings.Join(matches, "\n"), true
}

// Extract runs the default extractor.
func Extract(text string) (string, bool) {
	return defaultExtractor.Extract(text)
}
