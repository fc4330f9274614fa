package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReaderPreferences_Defaults(t *testing.T) {
	prefs := NewReaderPreferences()

	require.NotNil(t, prefs)
	assert.Equal(t, ThemeClassic, prefs.Theme)
	assert.Equal(t, 18, prefs.FontSize)
	assert.False(t, prefs.UpdatedAt.IsZero())
	assert.Equal(t, "#FFFEF0", prefs.Palette().Background)
}

func TestReaderPreferences_SetFontSizeClamps(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		want        int
		wantChanged bool
	}{
		{"within range", 22, 22, true},
		{"below minimum", 4, MinFontSize, true},
		{"above maximum", 40, MaxFontSize, true},
		{"unchanged", 18, 18, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := NewReaderPreferences()
			changed := prefs.SetFontSize(tt.size)
			assert.Equal(t, tt.want, prefs.FontSize)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestReaderPreferences_StepFontSize(t *testing.T) {
	prefs := NewReaderPreferences()
	prefs.FontSize = MaxFontSize

	assert.False(t, prefs.IncreaseFontSize())
	assert.Equal(t, MaxFontSize, prefs.FontSize)

	assert.True(t, prefs.DecreaseFontSize())
	assert.Equal(t, MaxFontSize-FontSizeStep, prefs.FontSize)
}

func TestReaderPreferences_SetThemeRejectsUnknown(t *testing.T) {
	prefs := NewReaderPreferences()

	assert.False(t, prefs.SetTheme("neon"))
	assert.Equal(t, ThemeClassic, prefs.Theme)

	assert.True(t, prefs.SetTheme(ThemeNight))
	assert.Equal(t, "#FFCD00", prefs.Palette().Accent)
}

func TestThemeOptions(t *testing.T) {
	opts := ThemeOptions()

	require.Len(t, opts, 3)
	assert.Equal(t, ThemeClassic, opts[0].Key)
	assert.Equal(t, "Cổ điển", opts[0].Label)
	assert.Equal(t, "Sepia", opts[1].Label)
	assert.Equal(t, "Đêm", opts[2].Label)
	assert.Equal(t, "#F3E7C9", opts[1].Preview.Background)
	assert.Equal(t, "#F1E6D3", opts[2].Preview.Text)
}

func TestPaletteFor_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, PaletteFor(ThemeClassic), PaletteFor("unknown"))
	assert.Equal(t, "rgba(0, 0, 0, 0.6)", PaletteFor(ThemeNight).Shadow)
}

func TestCategories(t *testing.T) {
	assert.Len(t, Categories(), 6)
	assert.True(t, CategoryHistory.Valid())
	assert.False(t, Category("sports").Valid())

	info, ok := CategoryPress.Info()
	require.True(t, ok)
	assert.Equal(t, "Báo Chí", info.Label)
}

func TestMediaImages(t *testing.T) {
	timeline := TimelineMedia{
		Events: []TimelineEvent{
			{Date: "1954", Image: &ImageRef{Path: "a.jpg"}},
			{Date: "1955"},
			{Date: "1956", Image: &ImageRef{Path: "b.jpg"}},
		},
	}

	assert.Equal(t, MediaKindTimeline, timeline.Kind())
	assert.Equal(t, []ImageRef{{Path: "a.jpg"}, {Path: "b.jpg"}}, MediaImages(timeline))
	assert.Len(t, MediaImages(GalleryMedia{Images: []ImageRef{{Path: "x"}}}), 1)
}
