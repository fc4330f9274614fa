package store

import (
	"context"
	"errors"
	"time"
)

// CachedAnswer is a remote model reply kept for repeat questions.
type CachedAnswer struct {
	CachedAt time.Time `json:"cached_at"`
	Provider string    `json:"provider"`
	Query    string    `json:"query"`
	Answer   string    `json:"answer"`
}

// GetAnswer returns the cached answer for query from provider.
// It returns ErrNotFound when nothing is cached or the entry expired.
func (s *Store) GetAnswer(_ context.Context, provider, query string) (*CachedAnswer, error) {
	var a CachedAnswer
	if err := s.get(answerKey(provider, query), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PutAnswer caches answer for ttl.
func (s *Store) PutAnswer(_ context.Context, provider, query, answer string, ttl time.Duration) error {
	a := CachedAnswer{
		CachedAt: time.Now().UTC(),
		Provider: provider,
		Query:    NormalizeQuery(query),
		Answer:   answer,
	}
	return s.setWithTTL(answerKey(provider, query), a, ttl)
}

// DeleteAnswer drops a cached answer. Missing entries are fine.
func (s *Store) DeleteAnswer(_ context.Context, provider, query string) error {
	err := s.delete(answerKey(provider, query))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// ClearAnswers drops every cached answer.
func (s *Store) ClearAnswers(_ context.Context) (int, error) {
	return s.deletePrefix([]byte(prefixAnswer))
}

// AnswerCount returns the number of live cached answers.
func (s *Store) AnswerCount(_ context.Context) (int, error) {
	return s.countPrefix([]byte(prefixAnswer))
}
