package library

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/disanlib/reader-server/internal/pagination"
)

// htmlTagPattern detects common block and inline tags.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|figure|img)[\s>/]`)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// htmlToMarkdown converts HTML to Markdown section by section so page break
// markers survive the conversion. Input without HTML is returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}

	sections := strings.Split(s, pagination.PageBreakMarker)
	for i, section := range sections {
		md, err := htmltomarkdown.ConvertString(section)
		if err != nil {
			continue
		}
		sections[i] = strings.TrimSpace(md)
	}
	return strings.Join(sections, "\n\n"+pagination.PageBreakMarker+"\n\n")
}

// cleanText NFC-normalizes s, unifies line endings, and trims it.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(norm.NFC.String(s))
}

// headingTitle returns the text of the first level-1 or level-2 Markdown
// heading and the content with that heading removed.
func headingTitle(content string) (string, string) {
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, prefix := range []string{"# ", "## "} {
			if title, ok := strings.CutPrefix(trimmed, prefix); ok {
				rest := strings.Join(strings.Split(content, "\n")[i+1:], "\n")
				return strings.TrimSpace(title), strings.TrimSpace(rest)
			}
		}
		return "", content
	}
	return "", content
}

// wordCount counts whitespace-separated words, ignoring page break markers.
func wordCount(s string) int {
	return len(strings.Fields(strings.ReplaceAll(s, pagination.PageBreakMarker, " ")))
}

// readingMinutes estimates reading time at 200 words per minute, at least 1.
func readingMinutes(words int) int {
	return max(1, (words+199)/200)
}
