package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query    string
	Types    []DocType
	BookID   string
	Category string

	Limit  int
	Offset int

	Highlight bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is one matching book or chapter. Chapter hits carry the chapter
// index so a reader session can jump straight to it.
type SearchHit struct {
	ID           string            `json:"id"`
	Type         DocType           `json:"type"`
	BookID       string            `json:"book_id"`
	Name         string            `json:"name"`
	BookTitle    string            `json:"book_title,omitempty"`
	Author       string            `json:"author,omitempty"`
	Category     string            `json:"category,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
	Score        float64           `json:"score"`
	ChapterIndex *int              `json:"chapter_index,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	req.SortBy([]string{"-_score", "book_id", "chapter_index"})
	req.Fields = []string{"type", "book_id", "name", "book_title", "author", "category", "chapter_index"}

	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("content")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := SearchHit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(v)
		}
		if v, ok := h.Fields["book_id"].(string); ok {
			hit.BookID = v
		}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["book_title"].(string); ok {
			hit.BookTitle = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["category"].(string); ok {
			hit.Category = v
		}
		if hit.Type == DocTypeChapter {
			if v, ok := h.Fields["chapter_index"].(float64); ok {
				idx := int(v)
				hit.ChapterIndex = &idx
			}
		}

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

// buildSearchQuery ANDs the text query with the type, book, and category filters.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		folded := Fold(q)

		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		phrase := bleve.NewMatchPhraseQuery(q)
		phrase.SetField("content")
		phrase.SetBoost(2.0)

		contentMatch := bleve.NewMatchQuery(q)
		contentMatch.SetField("content")
		contentMatch.SetOperator(query.MatchQueryOperatorAnd)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(1.5)

		synopsisMatch := bleve.NewMatchQuery(q)
		synopsisMatch.SetField("synopsis")

		textQueries := []query.Query{nameMatch, phrase, contentMatch, authorMatch, synopsisMatch}

		// Fuzzy and prefix queries skip analysis, so feed them folded terms.
		if !strings.ContainsRune(folded, ' ') {
			fuzzy := bleve.NewFuzzyQuery(folded)
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("name")
			fuzzy.SetBoost(0.8)
			textQueries = append(textQueries, fuzzy)

			if len(folded) >= 2 {
				prefix := bleve.NewPrefixQuery(folded)
				prefix.SetField("name")
				prefix.SetBoost(0.5)
				textQueries = append(textQueries, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if params.BookID != "" {
		bq := bleve.NewTermQuery(params.BookID)
		bq.SetField("book_id")
		queries = append(queries, bq)
	}

	if params.Category != "" {
		cq := bleve.NewTermQuery(params.Category)
		cq.SetField("category")
		queries = append(queries, cq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// Fold lowercases s and strips Vietnamese diacritics, mirroring the index analyzer.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
