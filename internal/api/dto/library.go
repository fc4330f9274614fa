package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/disanlib/reader-server/internal/domain"
)

// MediaPrefix is the URL path under which library images are served.
const MediaPrefix = "/media/"

// Image is an image reference with a fetchable URL.
type Image struct {
	URL      string `json:"url" doc:"Image URL, relative to the server"`
	MIME     string `json:"mime,omitempty" doc:"Image content type"`
	BlurHash string `json:"blur_hash,omitempty" doc:"BlurHash placeholder"`
	Width    int    `json:"width,omitempty" doc:"Width in pixels"`
	Height   int    `json:"height,omitempty" doc:"Height in pixels"`
}

// BookSummary is a book as listed on the explore screen.
type BookSummary struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Author             string          `json:"author"`
	Year               string          `json:"year,omitempty"`
	Category           domain.Category `json:"category"`
	Synopsis           string          `json:"synopsis,omitempty"`
	FeaturedQuote      string          `json:"featured_quote,omitempty"`
	CoverColor         string          `json:"cover_color"`
	AccentColor        string          `json:"accent_color"`
	HighlightTag       string          `json:"highlight_tag,omitempty"`
	ChapterCount       int             `json:"chapter_count"`
	ReadingTimeMinutes int             `json:"reading_time_minutes"`
}

// ChapterSummary describes a chapter without its text.
type ChapterSummary struct {
	Index                   int      `json:"index"`
	ID                      string   `json:"id"`
	Title                   string   `json:"title"`
	FeaturedQuote           string   `json:"featured_quote,omitempty"`
	BackgroundImage         *Image   `json:"background_image,omitempty"`
	MediaKeys               []string `json:"media_keys"`
	EstimatedReadingMinutes int      `json:"estimated_reading_minutes"`
}

// BookDetail is a book with its chapter list.
type BookDetail struct {
	BookSummary
	UpdatedAt time.Time        `json:"updated_at"`
	Chapters  []ChapterSummary `json:"chapters"`
}

// ChapterDetail is one chapter split into pages for a font size.
type ChapterDetail struct {
	ChapterSummary
	BookID   string   `json:"book_id"`
	FontSize int      `json:"font_size"`
	Pages    []string `json:"pages"`
}

// TimelineEvent is one dated entry of a timeline.
type TimelineEvent struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Image       *Image `json:"image,omitempty"`
}

// Media is a resolved media item. Kind selects which of Images or Events is set.
type Media struct {
	Kind        domain.MediaKind `json:"kind" enum:"image,gallery,timeline"`
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Caption     string           `json:"caption,omitempty"`
	Images      []Image          `json:"images,omitempty"`
	Events      []TimelineEvent  `json:"events,omitempty"`
	Cursor      *ImageCursor     `json:"cursor,omitempty"`
}

// ImageCursor is the viewer's place among a media item's images.
type ImageCursor struct {
	Index       int   `json:"index"`
	Count       int   `json:"count"`
	Image       Image `json:"image"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// MediaURL returns the URL serving the library file at path.
func MediaURL(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return MediaPrefix + strings.Join(segments, "/")
}

// ImageFrom converts an image reference.
func ImageFrom(ref domain.ImageRef) Image {
	return Image{
		URL:      MediaURL(ref.Path),
		MIME:     ref.MIME,
		BlurHash: ref.BlurHash,
		Width:    ref.Width,
		Height:   ref.Height,
	}
}

func imagePtr(ref *domain.ImageRef) *Image {
	if ref == nil {
		return nil
	}
	img := ImageFrom(*ref)
	return &img
}

// BookSummaryFrom converts a book.
func BookSummaryFrom(b *domain.Book) BookSummary {
	return BookSummary{
		ID:                 b.ID,
		Title:              b.Title,
		Author:             b.Author,
		Year:               b.Year,
		Category:           b.Category,
		Synopsis:           b.Synopsis,
		FeaturedQuote:      b.FeaturedQuote,
		CoverColor:         b.CoverColor,
		AccentColor:        b.AccentColor,
		HighlightTag:       b.HighlightTag,
		ChapterCount:       len(b.Chapters),
		ReadingTimeMinutes: b.ReadingTimeMinutes,
	}
}

// ChapterSummaryFrom converts the chapter at index.
func ChapterSummaryFrom(index int, ch *domain.Chapter) ChapterSummary {
	return ChapterSummary{
		Index:                   index,
		ID:                      ch.ID,
		Title:                   ch.Title,
		FeaturedQuote:           ch.FeaturedQuote,
		BackgroundImage:         imagePtr(ch.BackgroundImage),
		MediaKeys:               ch.MediaKeys(),
		EstimatedReadingMinutes: ch.EstimatedReadingMinutes,
	}
}

// BookDetailFrom converts a book with its chapters.
func BookDetailFrom(b *domain.Book) BookDetail {
	chapters := make([]ChapterSummary, len(b.Chapters))
	for i := range b.Chapters {
		chapters[i] = ChapterSummaryFrom(i, &b.Chapters[i])
	}
	return BookDetail{
		BookSummary: BookSummaryFrom(b),
		UpdatedAt:   b.UpdatedAt,
		Chapters:    chapters,
	}
}

// MediaFrom converts a media item.
func MediaFrom(m domain.Media) Media {
	info := m.Info()
	out := Media{
		Kind:        m.Kind(),
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Caption:     info.Caption,
	}

	switch v := m.(type) {
	case domain.ImageMedia:
		out.Images = imagesFrom(v.Images)
	case domain.GalleryMedia:
		out.Images = imagesFrom(v.Images)
	case domain.TimelineMedia:
		out.Events = make([]TimelineEvent, len(v.Events))
		for i, e := range v.Events {
			out.Events[i] = TimelineEvent{
				Date:        e.Date,
				Description: e.Description,
				Image:       imagePtr(e.Image),
			}
		}
	}
	return out
}

func imagesFrom(refs []domain.ImageRef) []Image {
	out := make([]Image, len(refs))
	for i, r := range refs {
		out[i] = ImageFrom(r)
	}
	return out
}
