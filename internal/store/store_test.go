package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ngô Đình Diệm là ai?", "ngô đình diệm là ai"},
		{"  Tết   Mậu Thân\n1968 ", "tết mậu thân 1968"},
		{"Sài Gòn...", "sài gòn"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in))
	}
}

func TestAnswers_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetAnswer(ctx, "gemini", "Sài Gòn")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutAnswer(ctx, "gemini", "Sài Gòn?", "Hòn ngọc Viễn Đông.", time.Hour))

	got, err := s.GetAnswer(ctx, "gemini", "  sài gòn ")
	require.NoError(t, err)
	assert.Equal(t, "Hòn ngọc Viễn Đông.", got.Answer)
	assert.Equal(t, "sài gòn", got.Query)

	_, err = s.GetAnswer(ctx, "anthropic", "Sài Gòn")
	assert.ErrorIs(t, err, ErrNotFound, "answers are scoped per provider")
}

func TestAnswers_ClearAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutAnswer(ctx, "gemini", "một", "1", 0))
	require.NoError(t, s.PutAnswer(ctx, "gemini", "hai", "2", time.Hour))

	n, err := s.AnswerCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteAnswer(ctx, "gemini", "một"))
	require.NoError(t, s.DeleteAnswer(ctx, "gemini", "không có"))

	removed, err := s.ClearAnswers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err = s.AnswerCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_InMemoryAndPing(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.RunGC())
}

func TestError_Is(t *testing.T) {
	err := ErrNotFound.WithMessage("conversation not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, 404, err.HTTPCode())
}
