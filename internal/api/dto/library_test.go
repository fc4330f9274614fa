package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disanlib/reader-server/internal/domain"
)

func TestMediaURL(t *testing.T) {
	assert.Equal(t, "/media/01-sai-gon-xua/images/nen.png", MediaURL("01-sai-gon-xua/images/nen.png"))
	assert.Equal(t, "/media/a/ch%E1%BB%A3%20x%C6%B0a.png", MediaURL("a/chợ xưa.png"))
}

func TestMediaFrom_KindDiscrimination(t *testing.T) {
	ref := domain.ImageRef{Path: "b/cho.png", MIME: "image/png", Width: 10, Height: 5}

	gallery := MediaFrom(domain.GalleryMedia{
		MediaInfo: domain.MediaInfo{ID: "g", Title: "Chợ"},
		Images:    []domain.ImageRef{ref, ref},
	})
	assert.Equal(t, domain.MediaKindGallery, gallery.Kind)
	require.Len(t, gallery.Images, 2)
	assert.Equal(t, "/media/b/cho.png", gallery.Images[0].URL)
	assert.Nil(t, gallery.Events)

	timeline := MediaFrom(domain.TimelineMedia{
		MediaInfo: domain.MediaInfo{ID: "t"},
		Events: []domain.TimelineEvent{
			{Date: "1914", Description: "Khánh thành", Image: &ref},
			{Date: "1955", Description: "Không ảnh"},
		},
	})
	assert.Equal(t, domain.MediaKindTimeline, timeline.Kind)
	assert.Nil(t, timeline.Images)
	require.Len(t, timeline.Events, 2)
	require.NotNil(t, timeline.Events[0].Image)
	assert.Equal(t, 10, timeline.Events[0].Image.Width)
	assert.Nil(t, timeline.Events[1].Image)
}

func TestBookDetailFrom(t *testing.T) {
	book := &domain.Book{
		ID:    "sach",
		Title: "Sách",
		Chapters: []domain.Chapter{
			{ID: "mot", Title: "Một"},
			{ID: "hai", Title: "Hai", Media: map[string]domain.Media{
				"b": domain.ImageMedia{}, "a": domain.ImageMedia{},
			}},
		},
	}

	detail := BookDetailFrom(book)
	assert.Equal(t, 2, detail.ChapterCount)
	require.Len(t, detail.Chapters, 2)
	assert.Equal(t, 1, detail.Chapters[1].Index)
	assert.Equal(t, []string{}, detail.Chapters[0].MediaKeys)
	assert.Equal(t, []string{"a", "b"}, detail.Chapters[1].MediaKeys)
}

func TestNewList(t *testing.T) {
	list := NewList[string](nil)
	assert.NotNil(t, list.Items)
	assert.Equal(t, 0, list.Total)
}
