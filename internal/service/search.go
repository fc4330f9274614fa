package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/search"
)

// MaxSearchLimit caps the page size of a search.
const MaxSearchLimit = 100

// SearchRequest is a search as the API receives it.
type SearchRequest struct {
	Query    string
	Types    []string
	BookID   string
	Category string
	Limit    int
	Offset   int
}

// SearchService runs full-text queries against the library index.
// The index itself is rebuilt by LibraryService on every reload.
type SearchService struct {
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		logger: logger,
	}
}

// Search validates req and queries books and chapters.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*search.SearchResult, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, errors.Validation("query is required")
	}

	params := search.DefaultSearchParams()
	params.Query = q
	params.BookID = req.BookID
	params.Offset = max(req.Offset, 0)
	if req.Limit > 0 {
		params.Limit = min(req.Limit, MaxSearchLimit)
	}

	for _, t := range req.Types {
		dt := search.DocType(strings.TrimSpace(t))
		if dt == "" {
			continue
		}
		if !dt.Valid() {
			return nil, errors.Validationf("unknown result type %q", t)
		}
		params.Types = append(params.Types, dt)
	}

	if req.Category != "" {
		if !domain.Category(req.Category).Valid() {
			return nil, errors.Validationf("unknown category %q", req.Category)
		}
		params.Category = req.Category
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}

	s.logger.Debug("search",
		"query", q,
		"hits", len(result.Hits),
		"total", result.Total,
		"took_ms", result.TookMs)
	return result, nil
}

// DocumentCount reports how many documents are indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
