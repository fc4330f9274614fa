package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/id"
	"github.com/disanlib/reader-server/internal/reader"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
)

// ProgressStore persists resume points.
type ProgressStore interface {
	GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error)
	UpsertProgress(ctx context.Context, p *domain.ReadingProgress) error
	ListProgress(ctx context.Context, limit int) ([]*domain.ReadingProgress, error)
	DeleteProgress(ctx context.Context, bookID string) error
}

// SessionView is what a client renders after every reader call.
type SessionView struct {
	SessionID  string             `json:"session_id"`
	Theme      domain.ThemeKey    `json:"theme"`
	Palette    domain.Palette     `json:"palette"`
	View       reader.View        `json:"view"`
	Transition *reader.Transition `json:"transition,omitempty"`

	// BackgroundImage and Media come from the book the session opened, which
	// may no longer be in the catalog.
	BackgroundImage *domain.ImageRef `json:"-"`
	Media           []domain.Media   `json:"-"`
}

// ContinueReading is a resume point with enough of its book to list it.
type ContinueReading struct {
	domain.ReadingProgress
	BookTitle  string `json:"book_title"`
	CoverColor string `json:"cover_color"`
}

type readerSession struct {
	mu          sync.Mutex
	id          string
	nav         *reader.Navigator
	openedAt    time.Time
	lastChapter int
}

// ReaderService hosts Navigators for open reading sessions.
type ReaderService struct {
	library  *LibraryService
	prefs    *PreferencesService
	progress ProgressStore
	events   store.EventEmitter
	logger   *slog.Logger

	// sessions expire after sessionTTL without a call.
	sessions *cache.Cache
}

// NewReaderService creates a reader service and subscribes it to font size
// changes.
func NewReaderService(library *LibraryService, prefs *PreferencesService, progress ProgressStore, events store.EventEmitter, logger *slog.Logger, sessionTTL time.Duration) *ReaderService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}

	s := &ReaderService{
		library:  library,
		prefs:    prefs,
		progress: progress,
		events:   events,
		logger:   logger,
		sessions: cache.New(sessionTTL, sessionTTL/4),
	}
	s.sessions.OnEvicted(func(key string, value any) {
		sess := value.(*readerSession)
		s.logger.Debug("reading session closed",
			"session_id", key,
			"book_id", sess.nav.Book().ID,
			"open_for", time.Since(sess.openedAt).Round(time.Second))
		s.events.Emit(sse.NewSessionClosedEvent(key, sess.nav.Book().ID))
	})
	prefs.OnFontSizeChange(s.applyFontSize)
	return s
}

// Open starts a session on bookID at the current preference font size,
// resuming from the saved position when there is one.
func (s *ReaderService) Open(ctx context.Context, bookID string) (*SessionView, error) {
	book, err := s.library.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return nil, err
	}

	nav, err := reader.NewNavigator(book, prefs.FontSize, reader.WithPaginator(s.library.Paginate))
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeValidation, "book %q cannot be read", bookID)
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create session")
	}
	sess := &readerSession{id: sessionID, nav: nav, openedAt: time.Now()}

	saved, err := s.progress.GetProgress(ctx, bookID)
	switch {
	case err == nil:
		pos := reader.Position{ChapterIndex: saved.ChapterIndex, PageIndex: saved.PageIndex}
		if saved.FontSize != nav.FontSize() {
			// Page indexes do not carry across font sizes.
			pos.PageIndex = 0
		}
		nav.Restore(pos)
	case !stderrors.Is(err, store.ErrNotFound):
		s.logger.Warn("failed to load reading progress", "book_id", bookID, "error", err)
	}
	sess.lastChapter = nav.Position().ChapterIndex

	nav.OnChapterChange(func(chapterIndex int) {
		dir := reader.DirectionForward
		if chapterIndex < sess.lastChapter {
			dir = reader.DirectionBackward
		}
		sess.lastChapter = chapterIndex
		s.events.Emit(sse.NewChapterChangedEvent(sess.id, positionData(nav, dir)))
	})

	// Font size changes that land before Set skip this session; the recheck
	// below picks them up and later ones wait on the lock.
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.sessions.Set(sessionID, sess, cache.DefaultExpiration)

	if latest, err := s.prefs.Get(ctx); err == nil && latest.FontSize != nav.FontSize() {
		nav.SetFontSize(latest.FontSize)
	}

	s.logger.Info("reading session opened",
		"session_id", sessionID,
		"book_id", bookID,
		"position", nav.Position(),
		"font_size", nav.FontSize())

	return s.render(ctx, sess, nil)
}

// Get returns the current view of a session.
func (s *ReaderService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.apply(ctx, sessionID, nil)
}

// Next turns a page forward.
func (s *ReaderService) Next(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.apply(ctx, sessionID, (*reader.Navigator).Next)
}

// Previous turns a page back.
func (s *ReaderService) Previous(ctx context.Context, sessionID string) (*SessionView, error) {
	return s.apply(ctx, sessionID, (*reader.Navigator).Previous)
}

// JumpToChapter opens the first page of chapter index.
func (s *ReaderService) JumpToChapter(ctx context.Context, sessionID string, index int) (*SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= sess.nav.ChapterCount() {
		return nil, errors.Validationf("chapter index %d outside 0-%d", index, sess.nav.ChapterCount()-1)
	}
	return s.apply(ctx, sessionID, func(n *reader.Navigator) reader.Transition {
		return n.JumpToChapter(index)
	})
}

// Close ends a session. Its last position is already saved.
func (s *ReaderService) Close(_ context.Context, sessionID string) error {
	if _, err := s.session(sessionID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	return nil
}

// SessionCount returns the number of live sessions.
func (s *ReaderService) SessionCount() int {
	return s.sessions.ItemCount()
}

// ListProgress returns resume points, most recent first, for books that are
// still in the library.
func (s *ReaderService) ListProgress(ctx context.Context, limit int) ([]ContinueReading, error) {
	saved, err := s.progress.ListProgress(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list progress")
	}

	catalog := s.library.Catalog()
	out := make([]ContinueReading, 0, len(saved))
	for _, p := range saved {
		book, ok := catalog.Book(p.BookID)
		if !ok {
			continue
		}
		out = append(out, ContinueReading{
			ReadingProgress: *p,
			BookTitle:       book.Title,
			CoverColor:      book.CoverColor,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ForgetProgress drops the saved position of a book.
func (s *ReaderService) ForgetProgress(ctx context.Context, bookID string) error {
	if err := s.progress.DeleteProgress(ctx, bookID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "delete progress")
	}
	return nil
}

func (s *ReaderService) session(sessionID string) (*readerSession, error) {
	v, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, errors.NotFoundf("reading session %q not found", sessionID)
	}
	return v.(*readerSession), nil
}

// apply runs move under the session lock. A nil move only renders.
func (s *ReaderService) apply(ctx context.Context, sessionID string, move func(*reader.Navigator) reader.Transition) (*SessionView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Any call keeps the session alive.
	s.sessions.Set(sessionID, sess, cache.DefaultExpiration)

	if move == nil {
		return s.render(ctx, sess, nil)
	}

	t := move(sess.nav)
	if t.Moved() {
		s.saveProgress(ctx, sess)
		s.events.Emit(sse.NewPageTurnedEvent(sess.id, positionData(sess.nav, t.Direction)))
	}
	return s.render(ctx, sess, &t)
}

// applyFontSize repaginates every live session.
func (s *ReaderService) applyFontSize(ctx context.Context, fontSize int) {
	for sessionID, item := range s.sessions.Items() {
		sess := item.Object.(*readerSession)

		sess.mu.Lock()
		if sess.nav.FontSize() != fontSize {
			sess.nav.SetFontSize(fontSize)
			s.saveProgress(ctx, sess)
			s.events.Emit(sse.NewRepaginatedEvent(sessionID, sse.RepaginatedData{
				BookID:     sess.nav.Book().ID,
				FontSize:   fontSize,
				TotalPages: sess.nav.TotalPages(),
			}))
		}
		sess.mu.Unlock()
	}
}

// saveProgress is best effort; a failed write only costs the resume point.
func (s *ReaderService) saveProgress(ctx context.Context, sess *readerSession) {
	pos := sess.nav.Position()
	p := &domain.ReadingProgress{
		BookID:          sess.nav.Book().ID,
		ChapterIndex:    pos.ChapterIndex,
		PageIndex:       pos.PageIndex,
		FontSize:        sess.nav.FontSize(),
		ProgressPercent: sess.nav.ProgressPercent(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.progress.UpsertProgress(ctx, p); err != nil {
		s.logger.Warn("failed to save reading progress",
			"session_id", sess.id,
			"book_id", p.BookID,
			"error", err)
	}
}

func (s *ReaderService) render(ctx context.Context, sess *readerSession, t *reader.Transition) (*SessionView, error) {
	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return nil, err
	}
	view := sess.nav.View()
	out := &SessionView{
		SessionID:  sess.id,
		Theme:      prefs.Theme,
		Palette:    prefs.Palette(),
		View:       view,
		Transition: t,
		Media:      make([]domain.Media, 0, len(view.MediaKeys)),
	}
	chapter := sess.nav.Book().Chapter(view.Position.ChapterIndex)
	if chapter != nil {
		out.BackgroundImage = chapter.BackgroundImage
		for _, key := range view.MediaKeys {
			if m, ok := reader.ResolveMedia(chapter, key); ok {
				out.Media = append(out.Media, m)
			}
		}
	}
	return out, nil
}

func positionData(nav *reader.Navigator, dir reader.Direction) sse.PositionData {
	pos := nav.Position()
	return sse.PositionData{
		BookID:          nav.Book().ID,
		Direction:       string(dir),
		ChapterIndex:    pos.ChapterIndex,
		PageIndex:       pos.PageIndex,
		GlobalPage:      nav.GlobalPageNumber(),
		TotalPages:      nav.TotalPages(),
		ProgressPercent: nav.ProgressPercent(),
	}
}
