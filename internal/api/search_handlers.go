package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/disanlib/reader-server/internal/search"
	"github.com/disanlib/reader-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search library",
		Description: "Full-text search across books and chapters, tolerant of missing diacritics",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the library.
type SearchInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Search query"`
	Types    string `query:"type" maxLength:"50" doc:"Comma-separated result types (book,chapter). Omit for all."`
	BookID   string `query:"book_id" doc:"Restrict chapter hits to one book"`
	Category string `query:"category" doc:"Category key filter"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	req := service.SearchRequest{
		Query:    input.Query,
		BookID:   input.BookID,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if input.Types != "" {
		req.Types = strings.Split(input.Types, ",")
	}

	result, err := s.services.Search.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Hits == nil {
		result.Hits = []search.SearchHit{}
	}

	return &SearchOutput{Body: *result}, nil
}
