package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/search"
	"github.com/disanlib/reader-server/internal/sse"
)

func TestLibraryService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	books, err := env.library.ListBooks(ctx, "")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "dai", books[0].ID)

	books, err = env.library.ListBooks(ctx, "music")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "ngan", books[0].ID)

	books, err = env.library.ListBooks(ctx, "press")
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)

	_, err = env.library.ListBooks(ctx, "sports")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = env.library.GetBook(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLibraryService_Categories(t *testing.T) {
	env := newTestEnv(t)

	cats := env.library.Categories(context.Background())
	require.Len(t, cats, len(domain.Categories()))

	counts := map[domain.Category]int{}
	for _, c := range cats {
		counts[c.Key] = c.BookCount
		assert.NotEmpty(t, c.Label)
	}
	assert.Equal(t, 1, counts[domain.CategoryHistory])
	assert.Equal(t, 1, counts[domain.CategoryMusic])
	assert.Equal(t, 0, counts[domain.CategoryPress])
}

func TestLibraryService_ChapterPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pages, err := env.library.ChapterPages(ctx, "dai", 0, 18)
	require.NoError(t, err)
	assert.Equal(t, 18, pages.FontSize)
	assert.Len(t, pages.Pages, 3)

	// Clamped to 26: 100 words per page.
	pages, err = env.library.ChapterPages(ctx, "dai", 0, 99)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxFontSize, pages.FontSize)
	assert.Len(t, pages.Pages, 4)

	_, err = env.library.ChapterPages(ctx, "dai", 5, 18)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = env.library.ChapterPages(ctx, "missing", 0, 18)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLibraryService_PaginateIsMemoized(t *testing.T) {
	env := newTestEnv(t)
	content := words("m", 300)

	first := env.library.Paginate(content, 18)
	second := env.library.Paginate(content, 18)
	require.Len(t, first, 2)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, 1, env.library.pages.ItemCount())

	env.library.Paginate(content, 20)
	assert.Equal(t, 2, env.library.pages.ItemCount())

	_, err := env.library.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, env.library.pages.ItemCount())
}

func TestLibraryService_ResolveMedia(t *testing.T) {
	env := newTestEnv(t)
	book := testBook("anh", domain.CategoryArchive, 20)
	book.Chapters[0].Media = map[string]domain.Media{
		"cho": domain.ImageMedia{
			MediaInfo: domain.MediaInfo{ID: "cho", Title: "Chợ"},
			Images:    []domain.ImageRef{{Path: "anh/cho.png"}},
		},
	}
	env.loader.set([]*domain.Book{book}, nil)
	_, err := env.library.Reload(context.Background())
	require.NoError(t, err)

	m, err := env.library.ResolveMedia(context.Background(), "anh", 0, "cho")
	require.NoError(t, err)
	assert.Equal(t, domain.MediaKindImage, m.Kind())

	_, err = env.library.ResolveMedia(context.Background(), "anh", 0, "khong-co")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = env.library.ResolveMedia(context.Background(), "anh", 3, "cho")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLibraryService_Reload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.loader.set([]*domain.Book{
		testBook("moi", domain.CategoryPress, 30),
	}, stderrors.New("bad: unknown category"))

	res, err := env.library.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BookCount)
	assert.Equal(t, []string{"bad: unknown category"}, res.Problems)

	_, err = env.library.GetBook(ctx, "dai")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = env.library.GetBook(ctx, "moi")
	assert.NoError(t, err)

	evs := env.events.ofType(sse.EventLibraryReloaded)
	require.Len(t, evs, 1)
	data := evs[0].Data.(sse.LibraryReloadedData)
	assert.Equal(t, 1, data.BookCount)

	// Search follows the catalog.
	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count) // book + one chapter

	hits, err := env.index.Search(ctx, search.SearchParams{Query: "moi", Limit: 10})
	require.NoError(t, err)
	assert.NotZero(t, hits.Total)
}

func TestLibraryService_ReloadKeepsCatalogOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.loader.set(nil, library.ErrEmptyLibrary)
	_, err := env.library.Reload(ctx)
	require.ErrorIs(t, err, errors.ErrUnavailable)
	assert.ErrorIs(t, err, library.ErrEmptyLibrary)

	assert.Equal(t, 2, env.library.Catalog().Len())
	assert.Empty(t, env.events.ofType(sse.EventLibraryReloaded))
}

func TestLibraryService_SeedLibrary(t *testing.T) {
	svc := NewLibraryService(library.NewLoader(library.Seed(), discard), nil, nil, discard)
	res, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.BookCount)
	assert.Empty(t, res.Problems)

	m, err := svc.ResolveMedia(context.Background(), "sai-gon-xua", 0, "cho-xua")
	require.NoError(t, err)
	assert.Equal(t, domain.MediaKindImage, m.Kind())
}
