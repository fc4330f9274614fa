package domain

// MediaKind discriminates media variants at the API boundary.
type MediaKind string

// Media kinds.
const (
	MediaKindImage    MediaKind = "image"
	MediaKindGallery  MediaKind = "gallery"
	MediaKindTimeline MediaKind = "timeline"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindImage, MediaKindGallery, MediaKindTimeline:
		return true
	}
	return false
}

// Media is attached to a chapter and referenced from its content by key.
// The concrete type is one of ImageMedia, GalleryMedia, or TimelineMedia.
type Media interface {
	Kind() MediaKind
	Info() MediaInfo
}

// MediaInfo holds the fields every media variant shares.
type MediaInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// ImageRef points at an image file relative to the library root.
type ImageRef struct {
	Path     string `json:"path"`
	MIME     string `json:"mime,omitempty"`
	BlurHash string `json:"blur_hash,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ImageMedia is a single illustration, possibly with alternates.
type ImageMedia struct {
	MediaInfo
	Images []ImageRef `json:"images"`
}

// GalleryMedia is an ordered set of images browsed with a cursor.
type GalleryMedia struct {
	MediaInfo
	Images []ImageRef `json:"images"`
}

// TimelineEvent is one dated entry of a timeline.
type TimelineEvent struct {
	Image       *ImageRef `json:"image,omitempty"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
}

// TimelineMedia is an ordered list of dated events.
type TimelineMedia struct {
	MediaInfo
	Events []TimelineEvent `json:"events"`
}

// Kind implements Media.
func (ImageMedia) Kind() MediaKind { return MediaKindImage }

// Info implements Media.
func (m ImageMedia) Info() MediaInfo { return m.MediaInfo }

// Kind implements Media.
func (GalleryMedia) Kind() MediaKind { return MediaKindGallery }

// Info implements Media.
func (m GalleryMedia) Info() MediaInfo { return m.MediaInfo }

// Kind implements Media.
func (TimelineMedia) Kind() MediaKind { return MediaKindTimeline }

// Info implements Media.
func (m TimelineMedia) Info() MediaInfo { return m.MediaInfo }

// MediaImages returns every image referenced by m, in order.
func MediaImages(m Media) []ImageRef {
	switch v := m.(type) {
	case ImageMedia:
		return v.Images
	case GalleryMedia:
		return v.Images
	case TimelineMedia:
		var out []ImageRef
		for _, e := range v.Events {
			if e.Image != nil {
				out = append(out, *e.Image)
			}
		}
		return out
	}
	return nil
}
