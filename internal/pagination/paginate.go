// Package pagination splits chapter text into fixed word-budget pages.
//
// The budget depends only on the font size: bigger type means fewer words per
// page. Pagination is total. It never fails and always yields at least one page.
package pagination

import (
	"math"
	"strings"
)

// PageBreakMarker forces a page boundary wherever it appears in content.
const PageBreakMarker = "<!-- pagebreak -->"

const (
	baseWordsPerPage = 190
	baseFontSize     = 16
	wordsPerPoint    = 9
	minWordsPerPage  = 90
)

// WordsPerPage returns the page budget for fontSize:
// max(90, 190 - round((fontSize-16)*9)).
func WordsPerPage(fontSize int) int {
	shrink := int(math.Round(float64(fontSize-baseFontSize) * wordsPerPoint))
	return max(minWordsPerPage, baseWordsPerPage-shrink)
}

// Paginate splits content into pages of at most WordsPerPage(fontSize) words.
//
// Whitespace runs collapse to a single space. Words are never split, dropped,
// or reordered. Empty or whitespace-only content yields exactly one empty page.
func Paginate(content string, fontSize int) []string {
	budget := WordsPerPage(fontSize)

	var pages []string
	for section := range strings.SplitSeq(content, PageBreakMarker) {
		pages = appendPages(pages, strings.Fields(section), budget)
	}

	if len(pages) == 0 {
		return []string{""}
	}
	return pages
}

// PageCount is len(Paginate(content, fontSize)) without building the pages.
func PageCount(content string, fontSize int) int {
	budget := WordsPerPage(fontSize)

	n := 0
	for section := range strings.SplitSeq(content, PageBreakMarker) {
		words := len(strings.Fields(section))
		n += (words + budget - 1) / budget
	}
	return max(n, 1)
}

func appendPages(pages, words []string, budget int) []string {
	for len(words) > 0 {
		end := min(budget, len(words))
		pages = append(pages, strings.Join(words[:end], " "))
		words = words[end:]
	}
	return pages
}
