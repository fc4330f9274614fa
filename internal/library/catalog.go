// Package library loads books from a directory tree (or the embedded seed
// library) into an immutable Catalog.
package library

import (
	"github.com/disanlib/reader-server/internal/domain"
)

// Catalog is an immutable, ordered set of books. Replace the whole catalog
// to change it.
type Catalog struct {
	byID  map[string]*domain.Book
	books []*domain.Book
}

// NewCatalog indexes books by ID, keeping their order.
func NewCatalog(books []*domain.Book) *Catalog {
	c := &Catalog{
		books: books,
		byID:  make(map[string]*domain.Book, len(books)),
	}
	for _, b := range books {
		c.byID[b.ID] = b
	}
	return c
}

// Books returns every book in catalog order. The slice must not be modified.
func (c *Catalog) Books() []*domain.Book {
	return c.books
}

// Book returns the book with id.
func (c *Catalog) Book(id string) (*domain.Book, bool) {
	b, ok := c.byID[id]
	return b, ok
}

// ByCategory returns the books in category, in catalog order.
func (c *Catalog) ByCategory(category domain.Category) []*domain.Book {
	var out []*domain.Book
	for _, b := range c.books {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// CategoryCounts returns the number of books per category.
func (c *Catalog) CategoryCounts() map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, b := range c.books {
		counts[b.Category]++
	}
	return counts
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	return len(c.books)
}
