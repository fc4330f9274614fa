package domain

import "time"

// Font size bounds for the reader, in points.
const (
	MinFontSize     = 14
	MaxFontSize     = 26
	DefaultFontSize = 18
	FontSizeStep    = 2
)

// ThemeKey names a reader theme.
type ThemeKey string

// Reader themes.
const (
	ThemeClassic ThemeKey = "classic"
	ThemeSepia   ThemeKey = "sepia"
	ThemeNight   ThemeKey = "night"
)

// DefaultTheme is used until the reader picks one.
const DefaultTheme = ThemeClassic

// Palette is the full set of reader colors for a theme.
type Palette struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
	Border     string `json:"border"`
	Shadow     string `json:"shadow"`
	Overlay    string `json:"overlay"`
}

// PalettePreview is the swatch shown next to a theme option.
type PalettePreview struct {
	Background string `json:"background"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
}

// ThemeOption describes a selectable theme.
type ThemeOption struct {
	Key         ThemeKey       `json:"key"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Preview     PalettePreview `json:"preview"`
}

var palettes = map[ThemeKey]Palette{
	ThemeClassic: {
		Background: "#FFFEF0",
		Text:       "#2C1810",
		Accent:     "#DA291C",
		Border:     "#D4A76A",
		Shadow:     "rgba(139, 69, 19, 0.2)",
		Overlay:    "rgba(255, 255, 255, 0.75)",
	},
	ThemeSepia: {
		Background: "#F3E7C9",
		Text:       "#3B2D1F",
		Accent:     "#C6862D",
		Border:     "#D9C29A",
		Shadow:     "rgba(105, 74, 40, 0.25)",
		Overlay:    "rgba(243, 231, 201, 0.82)",
	},
	ThemeNight: {
		Background: "#1B1B1B",
		Text:       "#F1E6D3",
		Accent:     "#FFCD00",
		Border:     "#333333",
		Shadow:     "rgba(0, 0, 0, 0.6)",
		Overlay:    "rgba(27, 27, 27, 0.75)",
	},
}

var themeOrder = []struct {
	key         ThemeKey
	label       string
	description string
}{
	{ThemeClassic, "Cổ điển", "Giấy ngà dịu mắt, phù hợp cho đọc dài."},
	{ThemeSepia, "Sepia", "Gam màu cát vàng gợi ký ức Sài Gòn xưa."},
	{ThemeNight, "Đêm", "Tông tối tương phản cao để đọc ban đêm."},
}

// Valid reports whether k is a known theme.
func (k ThemeKey) Valid() bool {
	_, ok := palettes[k]
	return ok
}

// ThemeKeyStrings returns the theme keys in display order.
func ThemeKeyStrings() []string {
	out := make([]string, len(themeOrder))
	for i, t := range themeOrder {
		out[i] = string(t.key)
	}
	return out
}

// ThemeOptions returns the selectable themes in display order.
func ThemeOptions() []ThemeOption {
	out := make([]ThemeOption, len(themeOrder))
	for i, t := range themeOrder {
		p := palettes[t.key]
		out[i] = ThemeOption{
			Key:         t.key,
			Label:       t.label,
			Description: t.description,
			Preview:     PalettePreview{Background: p.Background, Accent: p.Accent, Text: p.Text},
		}
	}
	return out
}

// PaletteFor returns the palette for theme, falling back to the default theme.
func PaletteFor(theme ThemeKey) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[DefaultTheme]
}

// ClampFontSize bounds size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	return min(max(size, MinFontSize), MaxFontSize)
}

// ReaderPreferences is the process-wide reading setup shared by every book.
type ReaderPreferences struct {
	UpdatedAt time.Time `json:"updated_at"`
	Theme     ThemeKey  `json:"theme"`
	FontSize  int       `json:"font_size"`
}

// NewReaderPreferences returns the defaults.
func NewReaderPreferences() *ReaderPreferences {
	return &ReaderPreferences{
		Theme:     DefaultTheme,
		FontSize:  DefaultFontSize,
		UpdatedAt: time.Now(),
	}
}

// Palette returns the palette of the selected theme.
func (p *ReaderPreferences) Palette() Palette {
	return PaletteFor(p.Theme)
}

// SetTheme selects theme. Unknown keys are rejected and leave p unchanged.
func (p *ReaderPreferences) SetTheme(theme ThemeKey) bool {
	if !theme.Valid() {
		return false
	}
	p.Theme = theme
	return true
}

// SetFontSize stores size clamped into range and reports whether it changed.
func (p *ReaderPreferences) SetFontSize(size int) bool {
	clamped := ClampFontSize(size)
	if clamped == p.FontSize {
		return false
	}
	p.FontSize = clamped
	return true
}

// IncreaseFontSize steps the font size up.
func (p *ReaderPreferences) IncreaseFontSize() bool {
	return p.SetFontSize(p.FontSize + FontSizeStep)
}

// DecreaseFontSize steps the font size down.
func (p *ReaderPreferences) DecreaseFontSize() bool {
	return p.SetFontSize(p.FontSize - FontSizeStep)
}
