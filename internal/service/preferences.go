package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
)

// PreferencesStore persists the single preferences record.
type PreferencesStore interface {
	GetPreferences(ctx context.Context) (*domain.ReaderPreferences, error)
	SavePreferences(ctx context.Context, prefs *domain.ReaderPreferences) error
}

// PreferencesUpdate carries the fields to change; nil fields are left alone.
type PreferencesUpdate struct {
	Theme    *domain.ThemeKey
	FontSize *int
}

// FontSizeListener is told about a font size change after it is saved.
type FontSizeListener func(ctx context.Context, fontSize int)

// PreferencesService owns the reader's theme and font size.
type PreferencesService struct {
	store    PreferencesStore
	events   store.EventEmitter
	logger   *slog.Logger
	defaults domain.ReaderPreferences

	mu        sync.Mutex
	listeners []FontSizeListener
}

// NewPreferencesService creates a preferences service. defaults is returned
// until something is saved; nil means the built-in defaults.
func NewPreferencesService(s PreferencesStore, events store.EventEmitter, logger *slog.Logger, defaults *domain.ReaderPreferences) *PreferencesService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	if defaults == nil {
		defaults = domain.NewReaderPreferences()
	}
	return &PreferencesService{
		store:    s,
		events:   events,
		logger:   logger,
		defaults: *defaults,
	}
}

// OnFontSizeChange registers fn to run after the font size changes.
func (s *PreferencesService) OnFontSizeChange(fn FontSizeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns the stored preferences, or the defaults before the first save.
func (s *PreferencesService) Get(ctx context.Context) (*domain.ReaderPreferences, error) {
	prefs, err := s.store.GetPreferences(ctx)
	if stderrors.Is(err, store.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load preferences")
	}
	// Rows written under other bounds are brought back into range.
	prefs.FontSize = domain.ClampFontSize(prefs.FontSize)
	if !prefs.Theme.Valid() {
		prefs.Theme = s.defaults.Theme
	}
	return prefs, nil
}

// Update applies upd. Unknown themes are rejected; font sizes are clamped.
func (s *PreferencesService) Update(ctx context.Context, upd PreferencesUpdate) (*domain.ReaderPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	changed := false
	if upd.Theme != nil {
		if !prefs.SetTheme(*upd.Theme) {
			return nil, errors.ValidationWithDetails("unknown theme", map[string]any{
				"theme":   *upd.Theme,
				"allowed": domain.ThemeKeyStrings(),
			})
		}
		changed = true
	}
	fontChanged := false
	if upd.FontSize != nil {
		fontChanged = prefs.SetFontSize(*upd.FontSize)
		changed = changed || fontChanged
	}
	if !changed {
		return prefs, nil
	}

	prefs.UpdatedAt = time.Now().UTC()
	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "save preferences")
	}

	s.logger.Info("preferences updated",
		"theme", prefs.Theme,
		"font_size", prefs.FontSize)

	s.events.Emit(sse.NewPreferencesUpdatedEvent(sse.PreferencesData{
		Theme:    string(prefs.Theme),
		FontSize: prefs.FontSize,
	}))

	if fontChanged {
		for _, fn := range s.listeners {
			fn(ctx, prefs.FontSize)
		}
	}
	return prefs, nil
}

// Themes lists the selectable themes.
func (s *PreferencesService) Themes() []domain.ThemeOption {
	return domain.ThemeOptions()
}
