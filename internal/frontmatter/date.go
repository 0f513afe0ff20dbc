package frontmatter

import (
	"regexp"
	"time"
)

var (
	dashDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)
	dotDateRe  = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})`)
)

// ExtractDate derives an ISO date from a content filename such as
// "2024-03-01-hello.md" or "2024.03.01.md". When neither pattern matches it
// returns today's date: a display fallback, not a reliable timestamp, so
// undated files can surface as recent in activity views.
func ExtractDate(filename string) string {
	if m := dashDateRe.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	if m := dotDateRe.FindStringSubmatch(filename); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return time.Now().Format("2006-01-02")
}
