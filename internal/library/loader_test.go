package library

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/pagination"
	"github.com/disanlib/reader-server/internal/reader"
)

func TestLoad_Seed(t *testing.T) {
	cat, err := NewLoader(Seed(), nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())

	ids := make([]string, 0, cat.Len())
	for _, b := range cat.Books() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"sai-gon-xua", "van-tho-mot-thoi", "anh-tu-lieu"}, ids)

	book, ok := cat.Book("sai-gon-xua")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryCulture, book.Category)
	assert.Equal(t, "#5B3A29", book.CoverColor)
	require.Len(t, book.Chapters, 2)

	ch := book.Chapters[0]
	assert.Equal(t, "Chợ Bến Thành", ch.Title)
	assert.Equal(t, "cho-ben-thanh", ch.ID)
	assert.False(t, strings.HasPrefix(ch.Content, "#"), "heading is lifted into the title")
	assert.Contains(t, ch.Content, pagination.PageBreakMarker)
	require.NotNil(t, ch.BackgroundImage)
	assert.Equal(t, "01-sai-gon-xua/images/nen.png", ch.BackgroundImage.Path)
	assert.Equal(t, "image/png", ch.BackgroundImage.MIME)
	assert.NotEmpty(t, ch.BackgroundImage.BlurHash)

	assert.Equal(t, []string{"cho-xua", "moc-thoi-gian"}, ch.MediaKeys())
	timeline, ok := ch.Media["moc-thoi-gian"].(domain.TimelineMedia)
	require.True(t, ok)
	require.Len(t, timeline.Events, 3)
	assert.Equal(t, "1914", timeline.Events[1].Date)
	require.NotNil(t, timeline.Events[1].Image)
	assert.Equal(t, 48, timeline.Events[1].Image.Width)

	// Links in the text resolve against the loaded media, and the missing
	// key is silently skipped.
	keys := reader.PageMediaKeys(&ch, []string{ch.Content})
	assert.Equal(t, []string{"cho-xua", "moc-thoi-gian"}, keys[0])
}

func TestLoad_SeedDiscoversChapterFiles(t *testing.T) {
	cat, err := NewLoader(Seed(), nil).Load(context.Background())
	require.NoError(t, err)

	book, ok := cat.Book("van-tho-mot-thoi")
	require.True(t, ok)
	require.Len(t, book.Chapters, 3)

	// Natural order: 1, 2, 10.
	assert.Equal(t, "Lời giới thiệu", book.Chapters[0].Title)
	assert.Equal(t, "Tòa soạn", book.Chapters[1].Title)
	assert.Equal(t, "Ghi chú của người biên tập", book.Chapters[2].Title)

	html := book.Chapters[1].Content
	assert.NotContains(t, html, "<p>")
	assert.Contains(t, html, "**bản vỗ**")
	assert.Contains(t, html, pagination.PageBreakMarker)

	// No authored colors: derived ones are valid hex.
	assert.Regexp(t, `^#[0-9A-F]{6}$`, book.CoverColor)
	assert.Positive(t, book.ReadingTimeMinutes)
}

func TestLoad_PartialFailure(t *testing.T) {
	fsys := fstest.MapFS{
		"good/book.yaml":  {Data: []byte("title: Sách Tốt\ncategory: history\n")},
		"good/01.md":      {Data: []byte("# Mở đầu\n\nMột hai ba bốn năm.")},
		"bad/book.yaml":   {Data: []byte("title: Sách Lỗi\ncategory: sports\n")},
		"bad/01.md":       {Data: []byte("nội dung")},
		"empty/book.yaml": {Data: []byte("title: Trống\n")},
		"media/book.yaml": {Data: []byte(`
title: Có Ảnh
chapters:
  - content: "Xem [ảnh](a)"
    media:
      a:
        kind: image
        images: [{path: missing.png}]
      b:
        kind: video
`)},
		".hidden/01.md": {Data: []byte("bỏ qua")},
	}

	cat, err := NewLoader(fsys, nil).Load(context.Background())
	require.NotNil(t, cat)
	require.Error(t, err)

	assert.Equal(t, 2, cat.Len())
	_, ok := cat.Book("sach-tot")
	assert.True(t, ok)

	withMedia, ok := cat.Book("co-anh")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryArchive, withMedia.Category)
	require.Contains(t, withMedia.Chapters[0].Media, "a")
	assert.NotContains(t, withMedia.Chapters[0].Media, "b")
	assert.Equal(t, "Chương 1", withMedia.Chapters[0].Title)

	msg := err.Error()
	assert.Contains(t, msg, `unknown category "sports"`)
	assert.Contains(t, msg, "no chapters")
	assert.Contains(t, msg, "missing.png")
	assert.Contains(t, msg, `unknown media kind "video"`)
	assert.GreaterOrEqual(t, len(multierr.Errors(err)), 3)
}

func TestLoad_PlainTextChapters(t *testing.T) {
	fsys := fstest.MapFS{
		"tho/book.yaml": {Data: []byte("title: Thơ\ncategory: literature\n")},
		"tho/2.txt":     {Data: []byte("# Bài hai\r\n\r\nGió <b>không</b> về. Xem [ảnh](a)")},
		"tho/1.txt":     {Data: []byte("# Bài một\n\nTrăng lên.\n<!-- pagebreak -->\nTrăng lặn.")},
		"tho/notes.pdf": {Data: []byte("%PDF")},
	}

	cat, err := NewLoader(fsys, nil).Load(context.Background())
	require.NoError(t, err)

	book, ok := cat.Book("tho")
	require.True(t, ok)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "Bài một", book.Chapters[0].Title)
	assert.Equal(t, "Bài hai", book.Chapters[1].Title)
	assert.Contains(t, book.Chapters[0].Content, pagination.PageBreakMarker)
	assert.Equal(t, 2, pagination.PageCount(book.Chapters[0].Content, domain.DefaultFontSize))

	// Text files are not run through the HTML converter.
	assert.Contains(t, book.Chapters[1].Content, "Gió <b>không</b> về.")
}

func TestLoad_DuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"a/book.yaml": {Data: []byte("id: trung\ntitle: A\n")},
		"a/01.md":     {Data: []byte("một")},
		"b/book.yaml": {Data: []byte("id: trung\ntitle: B\n")},
		"b/01.md":     {Data: []byte("hai")},
	}

	cat, err := NewLoader(fsys, nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate book id")
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "A", cat.Books()[0].Title)
}

func TestLoad_Empty(t *testing.T) {
	cat, err := NewLoader(fstest.MapFS{}, nil).Load(context.Background())
	assert.Nil(t, cat)
	assert.ErrorIs(t, err, ErrEmptyLibrary)
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(Seed(), nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog([]*domain.Book{
		{ID: "a", Category: domain.CategoryHistory},
		{ID: "b", Category: domain.CategoryMusic},
		{ID: "c", Category: domain.CategoryHistory},
	})

	assert.Len(t, cat.ByCategory(domain.CategoryHistory), 2)
	assert.Empty(t, cat.ByCategory(domain.CategoryPress))
	assert.Equal(t, 2, cat.CategoryCounts()[domain.CategoryHistory])

	_, ok := cat.Book("zzz")
	assert.False(t, ok)
}

func TestTextHelpers(t *testing.T) {
	title, rest := headingTitle("\n# Tiêu đề\n\nThân bài")
	assert.Equal(t, "Tiêu đề", title)
	assert.Equal(t, "Thân bài", rest)

	title, rest = headingTitle("Không có tiêu đề\n# muộn")
	assert.Empty(t, title)
	assert.Equal(t, "Không có tiêu đề\n# muộn", rest)

	assert.Equal(t, 3, wordCount("một <!-- pagebreak --> hai ba"))
	assert.Equal(t, 1, readingMinutes(0))
	assert.Equal(t, 1, readingMinutes(200))
	assert.Equal(t, 2, readingMinutes(201))

	assert.Equal(t, "plain text", htmlToMarkdown("plain text"))
}
