package library

// bookFile is the on-disk shape of book.yaml.
//
//	title: Sài Gòn Xưa
//	author: ...
//	category: history
//	chapters:
//	  - file: 01-cho-ben-thanh.md
//	    media:
//	      cho-xua:
//	        kind: image
//	        title: Chợ Bến Thành 1914
//	        images: [{path: images/cho.png}]
//
// When chapters is omitted every *.md, *.markdown, *.html, and *.htm file in
// the book directory becomes a chapter, in natural file-name order.
type bookFile struct {
	ID                 string        `yaml:"id"`
	Title              string        `yaml:"title"`
	Author             string        `yaml:"author"`
	Year               string        `yaml:"year"`
	Category           string        `yaml:"category"`
	Synopsis           string        `yaml:"synopsis"`
	FeaturedQuote      string        `yaml:"featured_quote"`
	CoverColor         string        `yaml:"cover_color"`
	AccentColor        string        `yaml:"accent_color"`
	HighlightTag       string        `yaml:"highlight_tag"`
	Order              int           `yaml:"order"`
	ReadingTimeMinutes int           `yaml:"reading_time_minutes"`
	Chapters           []chapterFile `yaml:"chapters"`
}

type chapterFile struct {
	ID              string               `yaml:"id"`
	Title           string               `yaml:"title"`
	File            string               `yaml:"file"`
	Content         string               `yaml:"content"`
	FeaturedQuote   string               `yaml:"featured_quote"`
	BackgroundImage string               `yaml:"background_image"`
	Media           map[string]mediaFile `yaml:"media"`
}

type mediaFile struct {
	Kind        string      `yaml:"kind"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Caption     string      `yaml:"caption"`
	Images      []imageFile `yaml:"images"`
	Events      []eventFile `yaml:"events"`
}

type imageFile struct {
	Path string `yaml:"path"`
}

type eventFile struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}
