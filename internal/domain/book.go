// Package domain contains the core entities of the reader: books, chapters, media,
// reader preferences, reading progress, and chat messages.
package domain

import (
	"slices"
	"time"
)

// Category groups books on the explore screen.
type Category string

// Book categories.
const (
	CategoryHistory    Category = "history"
	CategoryLiterature Category = "literature"
	CategoryMusic      Category = "music"
	CategoryCulture    Category = "culture"
	CategoryPress      Category = "press"
	CategoryArchive    Category = "archive"
)

// CategoryInfo carries the display copy for a category.
type CategoryInfo struct {
	Key         Category `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

var categories = []CategoryInfo{
	{CategoryHistory, "Lịch Sử", "Tài liệu lịch sử Việt Nam Cộng Hòa từ 1955-1975"},
	{CategoryMusic, "Âm Nhạc", "Bộ sưu tập nhạc vàng và ca khúc thời Việt Nam Cộng Hòa"},
	{CategoryLiterature, "Văn Học", "Thơ ca, truyện ngắn và tiểu thuyết"},
	{CategoryCulture, "Văn Hóa", "Phim ảnh, sân khấu và đời sống văn hóa"},
	{CategoryPress, "Báo Chí", "Tạp chí và báo chí thời kỳ"},
	{CategoryArchive, "Hình Ảnh", "Ảnh lưu trữ và tư liệu lịch sử"},
}

// Categories returns every category in display order.
func Categories() []CategoryInfo {
	return slices.Clone(categories)
}

// CategoryStrings returns the category keys as strings.
func CategoryStrings() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c.Key)
	}
	return out
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := c.Info()
	return ok
}

// Info returns the display copy for c.
func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Key == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Book is an immutable piece of archive content made of ordered chapters.
type Book struct {
	UpdatedAt          time.Time `json:"updated_at"`
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Author             string    `json:"author"`
	Year               string    `json:"year,omitempty"`
	Category           Category  `json:"category"`
	Synopsis           string    `json:"synopsis,omitempty"`
	FeaturedQuote      string    `json:"featured_quote,omitempty"`
	CoverColor         string    `json:"cover_color"`
	AccentColor        string    `json:"accent_color"`
	HighlightTag       string    `json:"highlight_tag,omitempty"`
	Chapters           []Chapter `json:"chapters"`
	ReadingTimeMinutes int       `json:"reading_time_minutes"`
}

// Chapter is one ordered section of a book. Content is Markdown and may link
// media with [label](key) where key names an entry in Media.
type Chapter struct {
	Media                   map[string]Media `json:"-"`
	BackgroundImage         *ImageRef        `json:"background_image,omitempty"`
	ID                      string           `json:"id"`
	Title                   string           `json:"title"`
	Content                 string           `json:"content"`
	FeaturedQuote           string           `json:"featured_quote,omitempty"`
	EstimatedReadingMinutes int              `json:"estimated_reading_minutes"`
}

// ChapterContents returns each chapter's content in order.
func (b *Book) ChapterContents() []string {
	out := make([]string, len(b.Chapters))
	for i := range b.Chapters {
		out[i] = b.Chapters[i].Content
	}
	return out
}

// Chapter returns the chapter at index, or nil when out of range.
func (b *Book) Chapter(index int) *Chapter {
	if index < 0 || index >= len(b.Chapters) {
		return nil
	}
	return &b.Chapters[index]
}

// MediaKeys returns the chapter's media keys in sorted order.
func (c *Chapter) MediaKeys() []string {
	keys := make([]string, 0, len(c.Media))
	for k := range c.Media {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
