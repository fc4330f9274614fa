package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/disanlib/reader-server/internal/color"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/logger"
	"github.com/disanlib/reader-server/internal/media/images"
)

// BookFileName is the metadata file inside each book directory.
const BookFileName = "book.yaml"

var chapterExts = []string{".md", ".markdown", ".html", ".htm", ".txt"}

// ErrEmptyLibrary is returned when no book could be loaded at all.
var ErrEmptyLibrary = errors.New("library contains no books")

// Loader reads books from a file system. Each top-level directory is a book.
type Loader struct {
	fsys   fs.FS
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS, log *slog.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{fsys: fsys, logger: log, now: time.Now}
}

// Load reads every book. Problems with individual books or files are
// collected into the returned error while the remaining books still load, so
// a non-nil error can come with a usable catalog. The catalog is nil only
// when ctx is canceled or nothing loaded.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read library root: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") && !strings.HasPrefix(e.Name(), "_") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(dirs))

	var (
		books  []*domain.Book
		errs   error
		seen   = make(map[string]string)
		orders = make(map[string]int)
	)
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		book, order, err := l.loadBook(dir)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", dir, err))
		}
		if book == nil {
			continue
		}
		if other, dup := seen[book.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: duplicate book id %q (also in %s)", dir, book.ID, other))
			continue
		}
		seen[book.ID] = dir
		orders[book.ID] = order
		books = append(books, book)
	}

	// Explicit order first, then natural directory order.
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		oa, ob := orders[a.ID], orders[b.ID]
		switch {
		case oa == ob:
			return 0
		case oa == 0:
			return 1
		case ob == 0:
			return -1
		}
		return oa - ob
	})

	if len(books) == 0 {
		return nil, multierr.Append(ErrEmptyLibrary, errs)
	}

	l.logger.Info("library loaded",
		"books", len(books),
		"problems", len(multierr.Errors(errs)))
	return NewCatalog(books), errs
}

// loadBook returns a nil book when the directory cannot produce one.
func (l *Loader) loadBook(dir string) (*domain.Book, int, error) {
	var meta bookFile
	raw, err := fs.ReadFile(l.fsys, path.Join(dir, BookFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return nil, 0, fmt.Errorf("parse %s: %w", BookFileName, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, 0, err
	}

	if len(meta.Chapters) == 0 {
		files, err := l.chapterFiles(dir)
		if err != nil {
			return nil, 0, err
		}
		for _, f := range files {
			meta.Chapters = append(meta.Chapters, chapterFile{File: f})
		}
	}
	if len(meta.Chapters) == 0 {
		return nil, 0, errors.New("no chapters")
	}

	book := &domain.Book{
		ID:                 strings.TrimSpace(meta.ID),
		Title:              cleanText(meta.Title),
		Author:             cleanText(meta.Author),
		Year:               strings.TrimSpace(meta.Year),
		Category:           domain.Category(strings.TrimSpace(meta.Category)),
		Synopsis:           cleanText(meta.Synopsis),
		FeaturedQuote:      cleanText(meta.FeaturedQuote),
		CoverColor:         strings.TrimSpace(meta.CoverColor),
		AccentColor:        strings.TrimSpace(meta.AccentColor),
		HighlightTag:       cleanText(meta.HighlightTag),
		ReadingTimeMinutes: meta.ReadingTimeMinutes,
		UpdatedAt:          l.modTime(dir),
	}
	if book.Title == "" {
		book.Title = dir
	}
	if book.ID == "" {
		book.ID = slug.Make(book.Title)
	}
	if !slug.IsSlug(book.ID) {
		return nil, 0, fmt.Errorf("invalid book id %q", book.ID)
	}
	if book.Category == "" {
		book.Category = domain.CategoryArchive
	}
	if !book.Category.Valid() {
		return nil, 0, fmt.Errorf("unknown category %q", book.Category)
	}

	cover, accent := color.ForBook(book.ID)
	if !color.Valid(book.CoverColor) {
		book.CoverColor = cover
	}
	if !color.Valid(book.AccentColor) {
		book.AccentColor = accent
	}

	var errs error
	probe := newProber(l.fsys)
	totalMinutes := 0
	for i, cf := range meta.Chapters {
		ch, err := l.loadChapter(dir, i, cf, probe)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("chapter %d: %w", i+1, err))
		}
		if ch == nil {
			continue
		}
		totalMinutes += ch.EstimatedReadingMinutes
		book.Chapters = append(book.Chapters, *ch)
	}
	if len(book.Chapters) == 0 {
		return nil, 0, multierr.Append(errs, errors.New("no readable chapters"))
	}
	if book.ReadingTimeMinutes <= 0 {
		book.ReadingTimeMinutes = totalMinutes
	}

	return book, meta.Order, errs
}

func (l *Loader) chapterFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if slices.Contains(chapterExts, strings.ToLower(path.Ext(e.Name()))) {
			files = append(files, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

func (l *Loader) loadChapter(dir string, index int, cf chapterFile, probe *prober) (*domain.Chapter, error) {
	content := cf.Content
	if cf.File != "" {
		raw, err := fs.ReadFile(l.fsys, path.Join(dir, cf.File))
		if err != nil {
			return nil, err
		}
		content = string(raw)
	}
	// Plain text is read as Markdown; only other files may carry HTML.
	if strings.ToLower(path.Ext(cf.File)) == ".txt" {
		content = cleanText(content)
	} else {
		content = cleanText(htmlToMarkdown(cleanText(content)))
	}

	title := cleanText(cf.Title)
	if heading, rest := headingTitle(content); heading != "" {
		content = rest
		if title == "" {
			title = heading
		}
	}
	if title == "" && cf.File != "" {
		title = strings.TrimSuffix(cf.File, path.Ext(cf.File))
	}
	if title == "" {
		title = "Chương " + strconv.Itoa(index+1)
	}

	ch := &domain.Chapter{
		ID:                      strings.TrimSpace(cf.ID),
		Title:                   title,
		Content:                 content,
		FeaturedQuote:           cleanText(cf.FeaturedQuote),
		EstimatedReadingMinutes: readingMinutes(wordCount(content)),
	}
	if ch.ID == "" {
		ch.ID = slug.Make(title)
		if ch.ID == "" {
			ch.ID = "chapter-" + strconv.Itoa(index+1)
		}
	}

	var errs error
	if cf.BackgroundImage != "" {
		ref, err := probe.ref(path.Join(dir, cf.BackgroundImage))
		errs = multierr.Append(errs, err)
		ch.BackgroundImage = &ref
	}

	if len(cf.Media) > 0 {
		ch.Media = make(map[string]domain.Media, len(cf.Media))
		keys := make([]string, 0, len(cf.Media))
		for k := range cf.Media {
			keys = append(keys, k)
		}
		sort.Sort(natural.StringSlice(keys))

		for _, key := range keys {
			m, err := buildMedia(dir, key, cf.Media[key], probe)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("media %q: %w", key, err))
			}
			if m != nil {
				ch.Media[key] = m
			}
		}
	}

	return ch, errs
}

func buildMedia(dir, key string, mf mediaFile, probe *prober) (domain.Media, error) {
	info := domain.MediaInfo{
		ID:          key,
		Title:       cleanText(mf.Title),
		Description: cleanText(mf.Description),
		Caption:     cleanText(mf.Caption),
	}

	var errs error
	refs := func(files []imageFile) []domain.ImageRef {
		out := make([]domain.ImageRef, 0, len(files))
		for _, f := range files {
			ref, err := probe.ref(path.Join(dir, f.Path))
			errs = multierr.Append(errs, err)
			out = append(out, ref)
		}
		return out
	}

	switch kind := domain.MediaKind(strings.TrimSpace(mf.Kind)); kind {
	case domain.MediaKindImage:
		if len(mf.Images) == 0 {
			return nil, errors.New("image media needs at least one image")
		}
		return domain.ImageMedia{MediaInfo: info, Images: refs(mf.Images)}, errs

	case domain.MediaKindGallery:
		if len(mf.Images) == 0 {
			return nil, errors.New("gallery needs at least one image")
		}
		return domain.GalleryMedia{MediaInfo: info, Images: refs(mf.Images)}, errs

	case domain.MediaKindTimeline:
		events := make([]domain.TimelineEvent, 0, len(mf.Events))
		for _, ef := range mf.Events {
			ev := domain.TimelineEvent{
				Date:        strings.TrimSpace(ef.Date),
				Description: cleanText(ef.Description),
			}
			if ef.Image != "" {
				ref, err := probe.ref(path.Join(dir, ef.Image))
				errs = multierr.Append(errs, err)
				ev.Image = &ref
			}
			events = append(events, ev)
		}
		return domain.TimelineMedia{MediaInfo: info, Events: events}, errs

	default:
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}
}

func (l *Loader) modTime(dir string) time.Time {
	info, err := fs.Stat(l.fsys, path.Join(dir, BookFileName))
	if err != nil || info.ModTime().IsZero() {
		return l.now().UTC()
	}
	return info.ModTime().UTC()
}

// prober fills image metadata, reading each file once per load.
type prober struct {
	fsys fs.FS
	seen map[string]domain.ImageRef
}

func newProber(fsys fs.FS) *prober {
	return &prober{fsys: fsys, seen: make(map[string]domain.ImageRef)}
}

// ref always returns a usable reference; the error reports missing or
// undecodable files.
func (p *prober) ref(filePath string) (domain.ImageRef, error) {
	if ref, ok := p.seen[filePath]; ok {
		return ref, nil
	}
	ref := domain.ImageRef{Path: filePath}

	data, err := fs.ReadFile(p.fsys, filePath)
	if err != nil {
		return ref, fmt.Errorf("image %s: %w", filePath, err)
	}
	info, err := images.ProbeBytes(data)
	if err != nil {
		return ref, fmt.Errorf("image %s: %w", filePath, err)
	}

	ref.MIME = info.MIME
	ref.Width = info.Width
	ref.Height = info.Height
	ref.BlurHash = info.BlurHash
	p.seen[filePath] = ref
	return ref, nil
}
