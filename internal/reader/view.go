package reader

// View is a snapshot of everything needed to render the current page.
type View struct {
	BookID           string   `json:"book_id"`
	BookTitle        string   `json:"book_title"`
	ChapterID        string   `json:"chapter_id"`
	ChapterTitle     string   `json:"chapter_title"`
	FeaturedQuote    string   `json:"featured_quote,omitempty"`
	PageText         string   `json:"page_text"`
	MediaKeys        []string `json:"media_keys"`
	Position         Position `json:"position"`
	ChapterCount     int      `json:"chapter_count"`
	ChapterPageCount int      `json:"chapter_page_count"`
	TotalPages       int      `json:"total_pages"`
	GlobalPage       int      `json:"global_page"`
	ProgressPercent  int      `json:"progress_percent"`
	FontSize         int      `json:"font_size"`
	IsFirstPage      bool     `json:"is_first_page"`
	IsLastPage       bool     `json:"is_last_page"`
}

// View snapshots the navigator.
func (n *Navigator) View() View {
	chapter := &n.book.Chapters[n.pos.ChapterIndex]
	page := n.CurrentPage()

	return View{
		BookID:           n.book.ID,
		BookTitle:        n.book.Title,
		ChapterID:        chapter.ID,
		ChapterTitle:     chapter.Title,
		FeaturedQuote:    chapter.FeaturedQuote,
		PageText:         page,
		MediaKeys:        n.mediaKeys[n.pos.ChapterIndex][n.pos.PageIndex],
		Position:         n.pos,
		ChapterCount:     len(n.pages),
		ChapterPageCount: len(n.pages[n.pos.ChapterIndex]),
		TotalPages:       n.TotalPages(),
		GlobalPage:       n.GlobalPageNumber(),
		ProgressPercent:  n.ProgressPercent(),
		FontSize:         n.fontSize,
		IsFirstPage:      n.IsFirstPage(),
		IsLastPage:       n.IsLastPage(),
	}
}
