package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/store"
)

// GetPreferences returns the saved reader preferences.
// Returns store.ErrNotFound before anything has been saved.
func (s *Store) GetPreferences(ctx context.Context) (*domain.ReaderPreferences, error) {
	var (
		prefs     domain.ReaderPreferences
		theme     string
		updatedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT theme, font_size, updated_at
		FROM reader_preferences
		WHERE id = 1`).Scan(&theme, &prefs.FontSize, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	prefs.Theme = domain.ThemeKey(theme)
	prefs.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences replaces the reader preferences.
func (s *Store) SavePreferences(ctx context.Context, prefs *domain.ReaderPreferences) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reader_preferences (id, theme, font_size, updated_at)
		VALUES (1, ?, ?, ?)`,
		string(prefs.Theme),
		prefs.FontSize,
		formatTime(prefs.UpdatedAt),
	)
	return err
}
