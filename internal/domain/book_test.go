package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_ChapterAccessors(t *testing.T) {
	book := &Book{
		ID: "saigon",
		Chapters: []Chapter{
			{ID: "c1", Content: "một"},
			{ID: "c2", Content: "hai", Media: map[string]Media{
				"tau":  ImageMedia{},
				"cang": GalleryMedia{},
			}},
		},
	}

	assert.Equal(t, []string{"một", "hai"}, book.ChapterContents())
	assert.Nil(t, book.Chapter(-1))
	assert.Nil(t, book.Chapter(2))
	assert.Equal(t, "c2", book.Chapter(1).ID)
	assert.Equal(t, []string{"cang", "tau"}, book.Chapter(1).MediaKeys())
}
