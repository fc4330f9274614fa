package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden)
	assert.Equal(t, 750*time.Millisecond, opts.SettleDelay)
	assert.Contains(t, opts.IgnorePatterns, "*.swp")
	assert.Equal(t, LibraryExtensions, opts.Extensions)
}

func TestOptions_ExplicitValuesKept(t *testing.T) {
	opts := Options{
		SettleDelay:    50 * time.Millisecond,
		IgnorePatterns: []string{},
		Extensions:     []string{},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden)
	assert.Equal(t, 50*time.Millisecond, opts.SettleDelay)
	assert.Empty(t, opts.IgnorePatterns)
	assert.Empty(t, opts.Extensions)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	var opts Options
	opts.setDefaults()

	tests := []struct {
		path   string
		ignore bool
	}{
		{"01-sai-gon-xua/book.yaml", false},
		{"01-sai-gon-xua/01-cho-ben-thanh.md", false},
		{"02-van-tho/2-toa-soan.HTML", false},
		{"01-sai-gon-xua/images/nen.png", false},
		{"01-sai-gon-xua", false},
		{"01-sai-gon-xua/notes.pdf", true},
		{"01-sai-gon-xua/.01-cho-ben-thanh.md.swp", true},
		{".git/config", true},
		{"01-sai-gon-xua/draft.md~", true},
		{"01-sai-gon-xua/.DS_Store", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_ShouldIgnore_AllExtensions(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}, Extensions: []string{}}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore(".hidden/file.pdf"))
	assert.False(t, opts.shouldIgnore("book/notes.pdf"))
}
