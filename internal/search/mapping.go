package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// foldedAnalyzer lowercases and strips diacritics, so "Sài Gòn" and
// "sai gon" index to the same terms.
const foldedAnalyzer = "vi_folded"

// buildIndexMapping creates the Bleve index mapping for search documents.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(foldedAnalyzer, map[string]any{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	indexMapping.DefaultAnalyzer = foldedAnalyzer

	docMapping := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = foldedAnalyzer
		fm.Store = store
		fm.IncludeTermVectors = vectors
		docMapping.AddFieldMappingsAt(field, fm)
	}
	text("name", true, true)
	text("book_title", true, false)
	text("author", true, true)
	text("synopsis", false, false)
	// Stored with vectors for content highlights.
	text("content", true, true)

	kw := func(field string, store bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		docMapping.AddFieldMappingsAt(field, fm)
	}
	kw("id", false)
	kw("type", true)
	kw("book_id", true)
	kw("category", true)

	idx := bleve.NewNumericFieldMapping()
	idx.Store = true
	docMapping.AddFieldMappingsAt("chapter_index", idx)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping, nil
}
