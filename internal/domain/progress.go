package domain

import "time"

// ReadingProgress is the persisted resume point for a book.
type ReadingProgress struct {
	UpdatedAt       time.Time `json:"updated_at"`
	BookID          string    `json:"book_id"`
	ChapterIndex    int       `json:"chapter_index"`
	PageIndex       int       `json:"page_index"`
	FontSize        int       `json:"font_size"`
	ProgressPercent int       `json:"progress_percent"`
}
