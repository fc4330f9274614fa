package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/store"
)

func scanProgress(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingProgress, error) {
	var (
		p         domain.ReadingProgress
		updatedAt string
	)

	err := scanner.Scan(
		&p.BookID,
		&p.ChapterIndex,
		&p.PageIndex,
		&p.FontSize,
		&p.ProgressPercent,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProgress returns the resume point for a book.
// Returns store.ErrNotFound if the book was never opened.
func (s *Store) GetProgress(ctx context.Context, bookID string) (*domain.ReadingProgress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT book_id, chapter_index, page_index, font_size, progress_percent, updated_at
		FROM reading_progress
		WHERE book_id = ?`, bookID)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProgress creates or replaces the resume point for p.BookID.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.ReadingProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_progress (
			book_id, chapter_index, page_index, font_size, progress_percent, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			chapter_index = excluded.chapter_index,
			page_index = excluded.page_index,
			font_size = excluded.font_size,
			progress_percent = excluded.progress_percent,
			updated_at = excluded.updated_at`,
		p.BookID,
		p.ChapterIndex,
		p.PageIndex,
		p.FontSize,
		p.ProgressPercent,
		formatTime(p.UpdatedAt),
	)
	return err
}

// ListProgress returns every resume point, most recently read first.
func (s *Store) ListProgress(ctx context.Context, limit int) ([]*domain.ReadingProgress, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, chapter_index, page_index, font_size, progress_percent, updated_at
		FROM reading_progress
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ReadingProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProgress forgets a book's resume point. This operation is idempotent.
func (s *Store) DeleteProgress(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reading_progress WHERE book_id = ?`, bookID)
	return err
}
