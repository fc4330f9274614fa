// Package reader implements the page-flipping state machine that walks a book
// chapter by chapter and page by page.
package reader

import (
	"errors"
	"math"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/pagination"
)

// ErrNoChapters is returned when a navigator is built for a book without chapters.
var ErrNoChapters = errors.New("reader: book has no chapters")

// Direction is the animation hint attached to a transition.
type Direction string

// Directions.
const (
	DirectionNone     Direction = "none"
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Position locates a page within a book.
type Position struct {
	ChapterIndex int `json:"chapter_index"`
	PageIndex    int `json:"page_index"`
}

// Transition describes the result of a navigation command.
type Transition struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Direction Direction `json:"direction"`
}

// Moved reports whether the position changed.
func (t Transition) Moved() bool {
	return t.From != t.To
}

// ChapterChanged reports whether the transition crossed a chapter boundary.
func (t Transition) ChapterChanged() bool {
	return t.From.ChapterIndex != t.To.ChapterIndex
}

// PaginateFunc splits chapter content into pages for a font size.
type PaginateFunc func(content string, fontSize int) []string

// Option configures a Navigator.
type Option func(*Navigator)

// WithPaginator replaces pagination.Paginate, e.g. with a memoizing wrapper.
func WithPaginator(fn PaginateFunc) Option {
	return func(n *Navigator) {
		if fn != nil {
			n.paginate = fn
		}
	}
}

// Navigator holds the reading position over a book at a given font size.
//
// A Navigator is owned by one caller at a time and is not safe for concurrent use.
type Navigator struct {
	book            *domain.Book
	paginate        PaginateFunc
	pages           [][]string
	mediaKeys       [][][]string
	pos             Position
	fontSize        int
	onChapterChange func(chapterIndex int)
}

// NewNavigator paginates every chapter of book at fontSize and starts at (0,0).
func NewNavigator(book *domain.Book, fontSize int, opts ...Option) (*Navigator, error) {
	if book == nil || len(book.Chapters) == 0 {
		return nil, ErrNoChapters
	}
	n := &Navigator{book: book, paginate: pagination.Paginate}
	for _, opt := range opts {
		opt(n)
	}
	n.repaginate(fontSize)
	return n, nil
}

// OnChapterChange registers fn to be called synchronously with the new chapter
// index whenever a transition changes chapters. A nil fn clears the callback.
func (n *Navigator) OnChapterChange(fn func(chapterIndex int)) {
	n.onChapterChange = fn
}

// Book returns the book being read.
func (n *Navigator) Book() *domain.Book { return n.book }

// Position returns the current position.
func (n *Navigator) Position() Position { return n.pos }

// FontSize returns the font size the pages were built for.
func (n *Navigator) FontSize() int { return n.fontSize }

// ChapterCount returns the number of chapters.
func (n *Navigator) ChapterCount() int { return len(n.pages) }

// CurrentChapterPages returns the pages of the current chapter.
func (n *Navigator) CurrentChapterPages() []string {
	return n.pages[n.pos.ChapterIndex]
}

// PageCount returns the number of pages of chapter i, or 0 when out of range.
func (n *Navigator) PageCount(chapterIndex int) int {
	if chapterIndex < 0 || chapterIndex >= len(n.pages) {
		return 0
	}
	return len(n.pages[chapterIndex])
}

// CurrentPage returns the text of the current page.
func (n *Navigator) CurrentPage() string {
	return n.pages[n.pos.ChapterIndex][n.pos.PageIndex]
}

// TotalPages is the sum of page counts over all chapters.
func (n *Navigator) TotalPages() int {
	total := 0
	for _, p := range n.pages {
		total += len(p)
	}
	return total
}

// GlobalPageNumber is the 1-based page number across the whole book.
func (n *Navigator) GlobalPageNumber() int {
	before := 0
	for i := range n.pos.ChapterIndex {
		before += len(n.pages[i])
	}
	return before + n.pos.PageIndex + 1
}

// ProgressPercent is round(global/total*100).
func (n *Navigator) ProgressPercent() int {
	return int(math.Round(float64(n.GlobalPageNumber()) / float64(n.TotalPages()) * 100))
}

// IsFirstPage reports whether the position is (0,0).
func (n *Navigator) IsFirstPage() bool {
	return n.pos == Position{}
}

// IsLastPage reports whether the position is the last page of the last chapter.
func (n *Navigator) IsLastPage() bool {
	last := len(n.pages) - 1
	return n.pos.ChapterIndex == last && n.pos.PageIndex == len(n.pages[last])-1
}

// Next turns to the next page, crossing into the next chapter when needed.
// On the final page it is a no-op.
func (n *Navigator) Next() Transition {
	from := n.pos
	switch {
	case n.pos.PageIndex < len(n.pages[n.pos.ChapterIndex])-1:
		n.pos.PageIndex++
	case n.pos.ChapterIndex < len(n.pages)-1:
		n.pos = Position{ChapterIndex: n.pos.ChapterIndex + 1}
	default:
		return Transition{From: from, To: from, Direction: DirectionNone}
	}
	return n.finish(from, DirectionForward)
}

// Previous turns back a page. From the first page of a chapter it lands on the
// last page of the previous chapter. At (0,0) it is a no-op.
func (n *Navigator) Previous() Transition {
	from := n.pos
	switch {
	case n.pos.PageIndex > 0:
		n.pos.PageIndex--
	case n.pos.ChapterIndex > 0:
		prev := n.pos.ChapterIndex - 1
		n.pos = Position{ChapterIndex: prev, PageIndex: len(n.pages[prev]) - 1}
	default:
		return Transition{From: from, To: from, Direction: DirectionNone}
	}
	return n.finish(from, DirectionBackward)
}

// JumpToChapter moves to the first page of chapter index. Jumping to the
// current chapter or outside the book is a no-op.
func (n *Navigator) JumpToChapter(index int) Transition {
	from := n.pos
	if index < 0 || index >= len(n.pages) || index == n.pos.ChapterIndex {
		return Transition{From: from, To: from, Direction: DirectionNone}
	}

	dir := DirectionBackward
	if index > n.pos.ChapterIndex {
		dir = DirectionForward
	}
	n.pos = Position{ChapterIndex: index}
	return n.finish(from, dir)
}

// SetFontSize re-paginates every chapter and returns to the first page of the
// current chapter. Setting the current size is a no-op.
func (n *Navigator) SetFontSize(fontSize int) Transition {
	from := n.pos
	if fontSize == n.fontSize {
		return Transition{From: from, To: from, Direction: DirectionNone}
	}
	n.repaginate(fontSize)
	n.pos.PageIndex = 0
	return Transition{From: from, To: n.pos, Direction: DirectionNone}
}

// Restore moves to pos, clamped into the book. It is used to resume reading
// and never fires the chapter callback.
func (n *Navigator) Restore(pos Position) Transition {
	from := n.pos
	ch := min(max(pos.ChapterIndex, 0), len(n.pages)-1)
	pg := min(max(pos.PageIndex, 0), len(n.pages[ch])-1)
	n.pos = Position{ChapterIndex: ch, PageIndex: pg}
	return Transition{From: from, To: n.pos, Direction: DirectionNone}
}

func (n *Navigator) finish(from Position, dir Direction) Transition {
	t := Transition{From: from, To: n.pos, Direction: dir}
	if t.ChapterChanged() && n.onChapterChange != nil {
		n.onChapterChange(n.pos.ChapterIndex)
	}
	return t
}

func (n *Navigator) repaginate(fontSize int) {
	n.fontSize = fontSize
	n.pages = make([][]string, len(n.book.Chapters))
	n.mediaKeys = make([][][]string, len(n.book.Chapters))
	for i := range n.book.Chapters {
		pages := n.paginate(n.book.Chapters[i].Content, fontSize)
		if len(pages) == 0 {
			pages = []string{""}
		}
		n.pages[i] = pages
		n.mediaKeys[i] = PageMediaKeys(&n.book.Chapters[i], pages)
	}
}
