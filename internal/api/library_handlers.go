package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/disanlib/reader-server/internal/api/dto"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/reader"
	"github.com/disanlib/reader-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the books in catalog order, optionally filtered by category",
		Tags:        []string{"Library"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its chapter list",
		Tags:        []string{"Library"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/chapters/{index}",
		Summary:     "Get chapter pages",
		Description: "Returns a chapter split into pages for a font size. Without font_size the saved preference is used.",
		Tags:        []string{"Library"},
	}, s.handleGetChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChapterMedia",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/chapters/{index}/media/{key}",
		Summary:     "Resolve media link",
		Description: "Returns the media item a chapter link points at. For media with images, image and step move a bounded cursor over them.",
		Tags:        []string{"Library"},
	}, s.handleGetChapterMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns the explore categories with their book counts",
		Tags:        []string{"Library"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "reloadLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/reload",
		Summary:     "Reload library",
		Description: "Re-reads the library and rebuilds the search index",
		Tags:        []string{"Library"},
	}, s.handleReloadLibrary)
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Category string `query:"category" doc:"Category key filter"`
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body dto.ListResponse[dto.BookSummary]
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body dto.BookDetail
}

// GetChapterInput contains parameters for getting a chapter.
type GetChapterInput struct {
	ID       string `path:"id" doc:"Book ID"`
	Index    int    `path:"index" minimum:"0" doc:"Chapter index"`
	FontSize int    `query:"font_size" doc:"Font size in pixels, clamped to the supported range"`
}

// ChapterOutput wraps a paginated chapter for Huma.
type ChapterOutput struct {
	Body dto.ChapterDetail
}

// GetChapterMediaInput contains parameters for resolving a media link.
type GetChapterMediaInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Index int    `path:"index" minimum:"0" doc:"Chapter index"`
	Key   string `path:"key" doc:"Media key from the chapter link"`
	Image int    `query:"image" minimum:"0" doc:"Index of the image the viewer is on"`
	Step  string `query:"step" doc:"Move the image cursor: next or previous"`
}

// MediaOutput wraps a media item for Huma.
type MediaOutput struct {
	Body dto.Media
}

// CategoriesOutput wraps the category list for Huma.
type CategoriesOutput struct {
	Body dto.ListResponse[service.CategorySummary]
}

// ReloadOutput wraps the reload result for Huma.
type ReloadOutput struct {
	Body service.ReloadResult
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := s.services.Library.ListBooks(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BookSummary, len(books))
	for i, b := range books {
		items[i] = dto.BookSummaryFrom(b)
	}
	return &ListBooksOutput{Body: dto.NewList(items)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Library.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: dto.BookDetailFrom(book)}, nil
}

func (s *Server) handleGetChapter(ctx context.Context, input *GetChapterInput) (*ChapterOutput, error) {
	fontSize := input.FontSize
	if fontSize == 0 {
		prefs, err := s.services.Preferences.Get(ctx)
		if err != nil {
			return nil, err
		}
		fontSize = prefs.FontSize
	}

	cp, err := s.services.Library.ChapterPages(ctx, input.ID, input.Index, fontSize)
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: dto.ChapterDetail{
		ChapterSummary: dto.ChapterSummaryFrom(cp.ChapterIndex, cp.Chapter),
		BookID:         cp.Book.ID,
		FontSize:       cp.FontSize,
		Pages:          cp.Pages,
	}}, nil
}

func (s *Server) handleGetChapterMedia(ctx context.Context, input *GetChapterMediaInput) (*MediaOutput, error) {
	media, err := s.services.Library.ResolveMedia(ctx, input.ID, input.Index, input.Key)
	if err != nil {
		return nil, err
	}

	cursor := reader.NewGalleryCursor(media)
	cursor.Seek(input.Image)
	switch input.Step {
	case "":
	case "next":
		cursor.Next()
	case "previous":
		cursor.Previous()
	default:
		return nil, errors.Validationf("step must be next or previous, got %q", input.Step)
	}

	out := dto.MediaFrom(media)
	if img, ok := cursor.Current(); ok {
		out.Cursor = &dto.ImageCursor{
			Index:       cursor.Index(),
			Count:       cursor.Len(),
			Image:       dto.ImageFrom(img),
			HasNext:     cursor.HasNext(),
			HasPrevious: cursor.HasPrevious(),
		}
	}
	return &MediaOutput{Body: out}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoriesOutput, error) {
	return &CategoriesOutput{Body: dto.NewList(s.services.Library.Categories(ctx))}, nil
}

func (s *Server) handleReloadLibrary(ctx context.Context, _ *struct{}) (*ReloadOutput, error) {
	result, err := s.services.Library.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return &ReloadOutput{Body: *result}, nil
}
