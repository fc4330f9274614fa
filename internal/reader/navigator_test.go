package reader

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/pagination"
)

func words(prefix string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(w, " ")
}

// twoChapterBook has 2 pages then 3 pages at font size 18 (172 words per page).
func twoChapterBook() *domain.Book {
	return &domain.Book{
		ID:    "saigon-xua",
		Title: "Sài Gòn xưa",
		Chapters: []domain.Chapter{
			{ID: "c1", Title: "Bến Nghé", Content: words("a", 172+10)},
			{ID: "c2", Title: "Chợ Lớn", Content: words("b", 172*2+5)},
		},
	}
}

func newNav(t *testing.T) *Navigator {
	t.Helper()
	nav, err := NewNavigator(twoChapterBook(), 18)
	require.NoError(t, err)
	return nav
}

func TestNewNavigator_RejectsEmptyBook(t *testing.T) {
	_, err := NewNavigator(&domain.Book{ID: "empty"}, 18)
	assert.ErrorIs(t, err, ErrNoChapters)

	_, err = NewNavigator(nil, 18)
	assert.ErrorIs(t, err, ErrNoChapters)
}

func TestNavigator_InitialState(t *testing.T) {
	nav := newNav(t)

	assert.Equal(t, Position{}, nav.Position())
	assert.Equal(t, 5, nav.TotalPages())
	assert.Equal(t, 1, nav.GlobalPageNumber())
	assert.Equal(t, 20, nav.ProgressPercent())
	assert.Len(t, nav.CurrentChapterPages(), 2)
	assert.True(t, nav.IsFirstPage())
	assert.False(t, nav.IsLastPage())
}

func TestNavigator_NextCrossesChapter(t *testing.T) {
	nav := newNav(t)
	var changes []int
	nav.OnChapterChange(func(i int) { changes = append(changes, i) })

	tr := nav.Next()
	assert.Equal(t, Transition{From: Position{0, 0}, To: Position{0, 1}, Direction: DirectionForward}, tr)
	assert.Empty(t, changes)

	tr = nav.Next()
	assert.Equal(t, Position{ChapterIndex: 1, PageIndex: 0}, tr.To)
	assert.Equal(t, DirectionForward, tr.Direction)
	assert.True(t, tr.ChapterChanged())
	assert.Equal(t, 3, nav.GlobalPageNumber())
	assert.Equal(t, 60, nav.ProgressPercent())
	assert.Equal(t, []int{1}, changes)
}

func TestNavigator_NextAtEndIsNoop(t *testing.T) {
	nav := newNav(t)
	for range 4 {
		nav.Next()
	}
	require.True(t, nav.IsLastPage())
	assert.Equal(t, 100, nav.ProgressPercent())

	tr := nav.Next()
	assert.False(t, tr.Moved())
	assert.Equal(t, DirectionNone, tr.Direction)
	assert.Equal(t, Position{ChapterIndex: 1, PageIndex: 2}, nav.Position())
}

func TestNavigator_PreviousLandsOnLastPageOfPreviousChapter(t *testing.T) {
	nav := newNav(t)
	nav.JumpToChapter(1)

	var changes []int
	nav.OnChapterChange(func(i int) { changes = append(changes, i) })

	tr := nav.Previous()
	assert.Equal(t, Position{ChapterIndex: 0, PageIndex: 1}, tr.To)
	assert.Equal(t, DirectionBackward, tr.Direction)
	assert.Equal(t, []int{0}, changes)
}

func TestNavigator_PreviousAtStartIsNoop(t *testing.T) {
	nav := newNav(t)

	tr := nav.Previous()
	assert.False(t, tr.Moved())
	assert.Equal(t, DirectionNone, tr.Direction)
}

func TestNavigator_JumpToChapter(t *testing.T) {
	nav := newNav(t)
	nav.Next()

	tests := []struct {
		name    string
		index   int
		wantPos Position
		wantDir Direction
	}{
		{"same chapter is noop", 0, Position{0, 1}, DirectionNone},
		{"out of range is noop", 7, Position{0, 1}, DirectionNone},
		{"negative is noop", -1, Position{0, 1}, DirectionNone},
		{"forward", 1, Position{1, 0}, DirectionForward},
		{"backward", 0, Position{0, 0}, DirectionBackward},
	}

	for _, tt := range tests {
		tr := nav.JumpToChapter(tt.index)
		assert.Equal(t, tt.wantPos, nav.Position(), tt.name)
		assert.Equal(t, tt.wantDir, tr.Direction, tt.name)
	}
}

func TestNavigator_SetFontSizeRepaginatesAndResetsPage(t *testing.T) {
	nav := newNav(t)
	nav.JumpToChapter(1)
	nav.Next()
	nav.Next()

	called := false
	nav.OnChapterChange(func(int) { called = true })

	tr := nav.SetFontSize(26)
	assert.Equal(t, Position{ChapterIndex: 1, PageIndex: 0}, nav.Position())
	assert.Equal(t, DirectionNone, tr.Direction)
	assert.False(t, called)
	assert.Equal(t, 26, nav.FontSize())
	// 182 words -> 2 pages, 349 words -> 4 pages at 100 words per page.
	assert.Equal(t, 6, nav.TotalPages())

	tr = nav.SetFontSize(26)
	assert.False(t, tr.Moved())
}

func TestNavigator_Restore(t *testing.T) {
	nav := newNav(t)

	nav.Restore(Position{ChapterIndex: 1, PageIndex: 2})
	assert.Equal(t, Position{1, 2}, nav.Position())

	nav.Restore(Position{ChapterIndex: 9, PageIndex: 9})
	assert.Equal(t, Position{1, 2}, nav.Position())

	nav.Restore(Position{ChapterIndex: -3, PageIndex: 40})
	assert.Equal(t, Position{0, 1}, nav.Position())
}

func TestNavigator_EmptyChapterHasOnePage(t *testing.T) {
	book := &domain.Book{Chapters: []domain.Chapter{{Content: "  "}, {Content: "x"}}}
	nav, err := NewNavigator(book, 18)
	require.NoError(t, err)

	assert.Equal(t, []string{""}, nav.CurrentChapterPages())
	nav.Next()
	assert.Equal(t, Position{ChapterIndex: 1}, nav.Position())
}

func TestNavigator_InvariantsHoldUnderWalk(t *testing.T) {
	nav := newNav(t)
	ops := []func() Transition{nav.Next, nav.Previous, nav.Next, nav.Next, nav.Next, nav.Next, nav.Next, nav.Previous}

	for _, op := range ops {
		op()
		pos := nav.Position()
		assert.GreaterOrEqual(t, pos.ChapterIndex, 0)
		assert.Less(t, pos.ChapterIndex, nav.ChapterCount())
		assert.GreaterOrEqual(t, pos.PageIndex, 0)
		assert.Less(t, pos.PageIndex, nav.PageCount(pos.ChapterIndex))
	}
}

func TestNavigator_WalkEveryPageAtEveryFontSize(t *testing.T) {
	books := map[string]*domain.Book{
		"two chapters": twoChapterBook(),
		"single page":  {Chapters: []domain.Chapter{{Content: "một"}}},
		"blank chapters": {Chapters: []domain.Chapter{
			{Content: ""},
			{Content: words("x", 400)},
			{Content: "   \n "},
			{Content: words("y", 91) + " " + pagination.PageBreakMarker + " " + words("z", 3)},
			{Content: pagination.PageBreakMarker},
		}},
	}

	for name, book := range books {
		for size := domain.MinFontSize; size <= domain.MaxFontSize; size++ {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				nav, err := NewNavigator(book, size)
				require.NoError(t, err)

				total := 0
				for i := range book.Chapters {
					require.GreaterOrEqual(t, nav.PageCount(i), 1)
					total += nav.PageCount(i)
				}
				require.Equal(t, total, nav.TotalPages())

				var seen []Position
				for step := 1; step < total; step++ {
					seen = append(seen, nav.Position())
					tr := nav.Next()
					require.True(t, tr.Moved())
					assert.Equal(t, DirectionForward, tr.Direction)
					assert.Equal(t, step+1, nav.GlobalPageNumber())
				}
				seen = append(seen, nav.Position())
				assert.True(t, nav.IsLastPage())
				assert.Equal(t, 100, nav.ProgressPercent())
				assert.False(t, nav.Next().Moved())

				for step := total - 1; step > 0; step-- {
					tr := nav.Previous()
					require.True(t, tr.Moved())
					assert.Equal(t, DirectionBackward, tr.Direction)
					assert.Equal(t, step, nav.GlobalPageNumber())
					assert.Equal(t, seen[step-1], nav.Position())
				}
				assert.Equal(t, Position{}, nav.Position())
				assert.True(t, nav.IsFirstPage())
				assert.False(t, nav.Previous().Moved())
			})
		}
	}
}

func TestNavigator_WithPaginator(t *testing.T) {
	calls := 0
	paginate := func(content string, size int) []string {
		calls++
		return pagination.Paginate(content, size)
	}

	nav, err := NewNavigator(twoChapterBook(), 18, WithPaginator(paginate))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	nav.SetFontSize(20)
	assert.Equal(t, 4, calls)
}

func TestNavigator_View(t *testing.T) {
	book := &domain.Book{
		ID:    "ben-thanh",
		Title: "Chợ Bến Thành",
		Chapters: []domain.Chapter{{
			ID:      "c1",
			Title:   "Khởi công",
			Content: "Xem [ảnh chợ](cho-1914) và [bản đồ](khong-co) rồi [ảnh chợ](cho-1914).",
			Media: map[string]domain.Media{
				"cho-1914": domain.ImageMedia{MediaInfo: domain.MediaInfo{ID: "cho-1914"}},
			},
		}},
	}
	nav, err := NewNavigator(book, 18)
	require.NoError(t, err)

	v := nav.View()
	assert.Equal(t, "ben-thanh", v.BookID)
	assert.Equal(t, "Khởi công", v.ChapterTitle)
	assert.Equal(t, []string{"cho-1914"}, v.MediaKeys)
	assert.Equal(t, 100, v.ProgressPercent)
	assert.True(t, v.IsFirstPage)
	assert.True(t, v.IsLastPage)
}
