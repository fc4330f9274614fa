// Package search provides full-text search over the library using Bleve.
// Books and chapters share one index and are told apart by type; Vietnamese
// diacritics are folded so queries typed without accents still match.
package search

import (
	"strconv"

	"github.com/disanlib/reader-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook    DocType = "book"
	DocTypeChapter DocType = "chapter"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == DocTypeBook || t == DocTypeChapter
}

// SearchDocument is the unified document structure for the Bleve index.
// Book title and author are denormalized into chapter documents so a single
// query can return either level.
type SearchDocument struct {
	ID       string  `json:"id"`
	Type     DocType `json:"type"`
	BookID   string  `json:"book_id"`
	Category string  `json:"category"`

	// Book: title, Chapter: chapter title.
	Name      string `json:"name"`
	BookTitle string `json:"book_title,omitempty"`
	Author    string `json:"author,omitempty"`
	Synopsis  string `json:"synopsis,omitempty"`
	Content   string `json:"content,omitempty"`

	ChapterIndex int `json:"chapter_index"`
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":            d.ID,
		"type":          string(d.Type),
		"book_id":       d.BookID,
		"category":      d.Category,
		"name":          d.Name,
		"chapter_index": d.ChapterIndex,
	}

	if d.BookTitle != "" {
		m["book_title"] = d.BookTitle
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Synopsis != "" {
		m["synopsis"] = d.Synopsis
	}
	if d.Content != "" {
		m["content"] = d.Content
	}
	return m
}

// ChapterDocID is the index ID of a chapter document.
func ChapterDocID(bookID string, chapterIndex int) string {
	return bookID + "#" + strconv.Itoa(chapterIndex)
}

// BookDocuments converts a book into its book document followed by one
// document per chapter.
func BookDocuments(book *domain.Book) []*SearchDocument {
	docs := make([]*SearchDocument, 0, len(book.Chapters)+1)
	docs = append(docs, &SearchDocument{
		ID:       book.ID,
		Type:     DocTypeBook,
		BookID:   book.ID,
		Category: string(book.Category),
		Name:     book.Title,
		Author:   book.Author,
		Synopsis: book.Synopsis,
	})

	for i := range book.Chapters {
		ch := &book.Chapters[i]
		docs = append(docs, &SearchDocument{
			ID:           ChapterDocID(book.ID, i),
			Type:         DocTypeChapter,
			BookID:       book.ID,
			Category:     string(book.Category),
			Name:         ch.Title,
			BookTitle:    book.Title,
			Author:       book.Author,
			Content:      ch.Content,
			ChapterIndex: i,
		})
	}
	return docs
}
