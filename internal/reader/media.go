package reader

import (
	"regexp"
	"strings"

	"github.com/disanlib/reader-server/internal/domain"
)

// mediaLinkPattern matches Markdown links of the form [label](key).
var mediaLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// PageMediaKeys returns, for each page, the chapter media keys linked from
// it. A link that a page break cuts in two belongs to both pages.
func PageMediaKeys(chapter *domain.Chapter, pages []string) [][]string {
	out := make([][]string, len(pages))
	for i := range out {
		out[i] = []string{}
	}
	if chapter == nil || len(chapter.Media) == 0 {
		return out
	}

	// Pages joined by a space give back the chapter's word stream, so a link
	// split across pages matches again here.
	starts := make([]int, len(pages))
	offset := 0
	for i, p := range pages {
		starts[i] = offset
		offset += len(p) + 1
	}
	joined := strings.Join(pages, " ")

	seen := make([]map[string]struct{}, len(pages))
	for _, m := range mediaLinkPattern.FindAllStringSubmatchIndex(joined, -1) {
		key := joined[m[4]:m[5]]
		if _, ok := chapter.Media[key]; !ok {
			continue
		}
		for i := range pages {
			end := starts[i] + len(pages[i])
			if m[0] >= end || m[1] <= starts[i] {
				continue
			}
			if seen[i] == nil {
				seen[i] = make(map[string]struct{})
			}
			if _, dup := seen[i][key]; dup {
				continue
			}
			seen[i][key] = struct{}{}
			out[i] = append(out[i], key)
		}
	}
	return out
}

// ResolveMedia looks key up in the chapter's media. A missing key is not an
// error; it reports false and the link should do nothing.
func ResolveMedia(chapter *domain.Chapter, key string) (domain.Media, bool) {
	if chapter == nil {
		return nil, false
	}
	m, ok := chapter.Media[key]
	return m, ok
}
