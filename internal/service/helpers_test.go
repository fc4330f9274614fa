package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/disanlib/reader-server/internal/chat"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/library"
	"github.com/disanlib/reader-server/internal/search"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
	"github.com/disanlib/reader-server/internal/store/sqlite"
)

var discard = slog.New(slog.DiscardHandler)

// recordingEmitter keeps every event for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e any) {
	ev, ok := e.(sse.Event)
	if !ok {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingEmitter) ofType(t sse.EventType) []sse.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sse.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// staticLoader serves a fixed set of books.
type staticLoader struct {
	mu    sync.Mutex
	books []*domain.Book
	err   error
}

func (l *staticLoader) Load(context.Context) (*library.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.books) == 0 {
		return nil, l.err
	}
	return library.NewCatalog(l.books), l.err
}

func (l *staticLoader) set(books []*domain.Book, err error) {
	l.mu.Lock()
	l.books, l.err = books, err
	l.mu.Unlock()
}

func words(prefix string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(w, " ")
}

// testBook builds a book with one chapter per entry of chapterWords.
func testBook(id string, category domain.Category, chapterWords ...int) *domain.Book {
	b := &domain.Book{
		ID:         id,
		Title:      "Sách " + id,
		Author:     "Tác giả",
		Category:   category,
		CoverColor: "#112233",
		UpdatedAt:  time.Now(),
	}
	for i, n := range chapterWords {
		b.Chapters = append(b.Chapters, domain.Chapter{
			ID:      fmt.Sprintf("c%d", i),
			Title:   fmt.Sprintf("Chương %d", i+1),
			Content: words(fmt.Sprintf("%s-c%d-w", id, i), n),
		})
	}
	return b
}

type testEnv struct {
	events  *recordingEmitter
	loader  *staticLoader
	sqlite  *sqlite.Store
	kv      *store.Store
	index   *search.SearchIndex
	library *LibraryService
	prefs   *PreferencesService
	reader  *ReaderService
}

// newTestEnv wires the services over real stores. At font size 18 a page
// holds 172 words, so the 400 word chapter of "dai" has 3 pages.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "reader.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv, err := store.Open(store.Options{InMemory: true, Logger: discard})
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: discard})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	env := &testEnv{
		events: &recordingEmitter{},
		loader: &staticLoader{books: []*domain.Book{
			testBook("dai", domain.CategoryHistory, 400, 100),
			testBook("ngan", domain.CategoryMusic, 50),
		}},
		sqlite: db,
		kv:     kv,
		index:  index,
	}
	env.library = NewLibraryService(env.loader, index, env.events, discard)
	_, err = env.library.Reload(context.Background())
	require.NoError(t, err)

	env.prefs = NewPreferencesService(db, env.events, discard, nil)
	env.reader = NewReaderService(env.library, env.prefs, db, env.events, discard, time.Hour)
	env.events.reset()
	return env
}

// fakeResponder answers from a function and records calls.
type fakeResponder struct {
	name string

	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, query string) (string, error)
}

func (f *fakeResponder) Name() string { return f.name }

func (f *fakeResponder) Respond(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, query)
}

func (f *fakeResponder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newChatService(t *testing.T, env *testEnv, r chat.Responder, opts ChatOptions) *ChatService {
	t.Helper()
	svc := NewChatService(env.sqlite, env.kv, r, env.events, discard, opts)
	t.Cleanup(svc.Close)
	return svc
}
