// Package service holds the reader's business logic: the book catalog,
// reader preferences, reading sessions, search, and the history chat.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/multierr"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/pagination"
	"github.com/disanlib/reader-server/internal/reader"
	"github.com/disanlib/reader-server/internal/search"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
	"github.com/disanlib/reader-server/internal/watcher"
)

// CatalogLoader produces a fresh catalog. A non-nil error may come with a
// usable catalog; see library.Loader.
type CatalogLoader interface {
	Load(ctx context.Context) (*library.Catalog, error)
}

// CategorySummary is a category with the number of books filed under it.
type CategorySummary struct {
	domain.CategoryInfo
	BookCount int `json:"book_count"`
}

// ChapterPages is a chapter split into pages for one font size.
type ChapterPages struct {
	Book         *domain.Book    `json:"-"`
	Chapter      *domain.Chapter `json:"-"`
	ChapterIndex int             `json:"chapter_index"`
	FontSize     int             `json:"font_size"`
	Pages        []string        `json:"pages"`
}

// ReloadResult summarizes a library reload.
type ReloadResult struct {
	BookCount int      `json:"book_count"`
	Problems  []string `json:"problems"`
}

const (
	pageMemoTTL     = 30 * time.Minute
	pageMemoCleanup = 10 * time.Minute
)

// LibraryService serves the book catalog. The catalog is swapped whole on
// reload; readers holding a book keep the version they opened.
type LibraryService struct {
	loader CatalogLoader
	index  *search.SearchIndex
	events store.EventEmitter
	logger *slog.Logger

	mu      sync.RWMutex
	catalog *library.Catalog

	// pages memoizes pagination by content hash and font size.
	pages *cache.Cache
}

// NewLibraryService creates a library service. index may be nil, in which
// case reloads skip search indexing.
func NewLibraryService(loader CatalogLoader, index *search.SearchIndex, events store.EventEmitter, logger *slog.Logger) *LibraryService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	return &LibraryService{
		loader:  loader,
		index:   index,
		events:  events,
		logger:  logger,
		catalog: library.NewCatalog(nil),
		pages:   cache.New(pageMemoTTL, pageMemoCleanup),
	}
}

// Catalog returns the current catalog.
func (s *LibraryService) Catalog() *library.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Reload re-reads the library. When the loader yields nothing the current
// catalog stays in place and the error is returned. Partial problems are
// logged and reported in the result.
func (s *LibraryService) Reload(ctx context.Context) (*ReloadResult, error) {
	start := time.Now()
	catalog, loadErr := s.loader.Load(ctx)
	if catalog == nil {
		s.logger.Error("library reload failed, keeping previous catalog", "error", loadErr)
		return nil, errors.Wrap(loadErr, errors.CodeUnavailable, "library could not be loaded")
	}

	result := &ReloadResult{BookCount: catalog.Len(), Problems: []string{}}
	for _, err := range multierr.Errors(loadErr) {
		s.logger.Warn("library problem", "error", err)
		result.Problems = append(result.Problems, err.Error())
	}

	if s.index != nil {
		var docs []*search.SearchDocument
		for _, b := range catalog.Books() {
			docs = append(docs, search.BookDocuments(b)...)
		}
		if err := s.index.Replace(docs); err != nil {
			// The catalog is still served; search lags until the next reload.
			s.logger.Error("search index rebuild failed", "error", err)
			result.Problems = append(result.Problems, "search index: "+err.Error())
		}
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	s.pages.Flush()

	s.logger.Info("library reloaded",
		"books", result.BookCount,
		"problems", len(result.Problems),
		"duration_ms", time.Since(start).Milliseconds())

	s.events.Emit(sse.NewLibraryReloadedEvent(sse.LibraryReloadedData{
		BookCount: result.BookCount,
		Errors:    result.Problems,
	}))
	return result, nil
}

// Watch reloads the library whenever w reports changes, until ctx ends or
// w stops.
func (s *LibraryService) Watch(ctx context.Context, w *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-w.Changes():
			if !ok {
				return
			}
			s.logger.Info("library files changed", "paths", len(change.Paths))
			if _, err := s.Reload(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("reload after change failed", "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.logger.Warn("library watcher error", "error", err)
		}
	}
}

// ListBooks returns books in catalog order, filtered by category when one is
// given.
func (s *LibraryService) ListBooks(_ context.Context, category string) ([]*domain.Book, error) {
	catalog := s.Catalog()
	if category == "" {
		return catalog.Books(), nil
	}
	c := domain.Category(category)
	if !c.Valid() {
		return nil, errors.Validationf("unknown category %q", category)
	}
	books := catalog.ByCategory(c)
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// GetBook returns a book by ID.
func (s *LibraryService) GetBook(_ context.Context, id string) (*domain.Book, error) {
	book, ok := s.Catalog().Book(id)
	if !ok {
		return nil, errors.NotFoundf("book %q not found", id)
	}
	return book, nil
}

// Categories returns every category with its book count, in display order.
func (s *LibraryService) Categories(_ context.Context) []CategorySummary {
	counts := s.Catalog().CategoryCounts()
	infos := domain.Categories()
	out := make([]CategorySummary, len(infos))
	for i, info := range infos {
		out[i] = CategorySummary{CategoryInfo: info, BookCount: counts[info.Key]}
	}
	return out
}

// ChapterPages paginates one chapter. fontSize is clamped into range.
func (s *LibraryService) ChapterPages(ctx context.Context, bookID string, chapterIndex, fontSize int) (*ChapterPages, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapter := book.Chapter(chapterIndex)
	if chapter == nil {
		return nil, errors.NotFoundf("chapter %d not found in %q", chapterIndex, bookID)
	}
	size := domain.ClampFontSize(fontSize)
	return &ChapterPages{
		Book:         book,
		Chapter:      chapter,
		ChapterIndex: chapterIndex,
		FontSize:     size,
		Pages:        s.Paginate(chapter.Content, size),
	}, nil
}

// ResolveMedia returns the media a chapter link points at.
func (s *LibraryService) ResolveMedia(ctx context.Context, bookID string, chapterIndex int, key string) (domain.Media, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	chapter := book.Chapter(chapterIndex)
	if chapter == nil {
		return nil, errors.NotFoundf("chapter %d not found in %q", chapterIndex, bookID)
	}
	media, ok := reader.ResolveMedia(chapter, key)
	if !ok {
		return nil, errors.NotFoundf("media %q not found", key)
	}
	return media, nil
}

// Paginate is pagination.Paginate memoized until the next reload. It
// satisfies reader.PaginateFunc. The returned slice is shared and must not
// be modified.
func (s *LibraryService) Paginate(content string, fontSize int) []string {
	key := strconv.FormatUint(xxhash.Sum64String(content), 36) + ":" + strconv.Itoa(fontSize)
	if cached, ok := s.pages.Get(key); ok {
		return cached.([]string)
	}
	pages := pagination.Paginate(content, fontSize)
	s.pages.Set(key, pages, cache.DefaultExpiration)
	return pages
}
