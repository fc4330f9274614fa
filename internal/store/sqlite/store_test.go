package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPreferences(ctx); err != store.ErrNotFound {
		t.Fatalf("GetPreferences before save: got %v, want ErrNotFound", err)
	}

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	prefs := &domain.ReaderPreferences{Theme: domain.ThemeSepia, FontSize: 22, UpdatedAt: now}
	if err := s.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	prefs.Theme = domain.ThemeNight
	if err := s.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences again: %v", err)
	}

	got, err := s.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if got.Theme != domain.ThemeNight || got.FontSize != 22 || !got.UpdatedAt.Equal(now) {
		t.Errorf("got %+v", got)
	}
}

func TestProgress_UpsertAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		p := &domain.ReadingProgress{
			BookID:          id,
			ChapterIndex:    i,
			FontSize:        18,
			ProgressPercent: 10 * i,
			UpdatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.UpsertProgress(ctx, p); err != nil {
			t.Fatalf("UpsertProgress(%s): %v", id, err)
		}
	}

	if err := s.UpsertProgress(ctx, &domain.ReadingProgress{
		BookID: "a", ChapterIndex: 2, PageIndex: 1, FontSize: 20, ProgressPercent: 80,
		UpdatedAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("UpsertProgress update: %v", err)
	}

	got, err := s.GetProgress(ctx, "a")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if got.ChapterIndex != 2 || got.PageIndex != 1 || got.FontSize != 20 || got.ProgressPercent != 80 {
		t.Errorf("GetProgress = %+v", got)
	}

	list, err := s.ListProgress(ctx, 0)
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(list) != 3 || list[0].BookID != "a" || list[1].BookID != "c" {
		t.Errorf("ListProgress order wrong: %v %v", len(list), list[0].BookID)
	}

	limited, err := s.ListProgress(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListProgress(1) = %d, %v", len(limited), err)
	}

	if err := s.DeleteProgress(ctx, "a"); err != nil {
		t.Fatalf("DeleteProgress: %v", err)
	}
	if _, err := s.GetProgress(ctx, "a"); err != store.ErrNotFound {
		t.Errorf("GetProgress after delete: %v", err)
	}
}

func TestChat_ConversationAndMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	conv := &domain.Conversation{ID: "4b0f5a38-2a0e-4c4e-9a83-0fa2b1c7d111", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if err := s.CreateConversation(ctx, conv); err == nil {
		t.Fatal("duplicate CreateConversation should fail")
	}

	msgs := []*domain.ChatMessage{
		{ID: "msg-1", ConversationID: conv.ID, Role: domain.ChatRoleAssistant, Source: domain.ChatSourceWelcome, Text: "Xin chào", CreatedAt: now},
		{ID: "msg-2", ConversationID: conv.ID, Role: domain.ChatRoleUser, Source: domain.ChatSourceUser, Text: "Sài Gòn?", CreatedAt: now},
		{ID: "msg-3", ConversationID: conv.ID, Role: domain.ChatRoleAssistant, Source: domain.ChatSourceLocal, Text: "Hòn ngọc Viễn Đông", CreatedAt: now.Add(time.Second)},
	}
	for _, m := range msgs {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage(%s): %v", m.ID, err)
		}
	}

	got, err := s.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListMessages len = %d, want 3", len(got))
	}
	for i, m := range got {
		if m.ID != msgs[i].ID || m.Role != msgs[i].Role || m.Source != msgs[i].Source {
			t.Errorf("message %d = %+v", i, m)
		}
	}

	c, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if !c.UpdatedAt.Equal(now.Add(time.Second)) {
		t.Errorf("UpdatedAt = %v", c.UpdatedAt)
	}

	err = s.AppendMessage(ctx, &domain.ChatMessage{ID: "msg-x", ConversationID: "missing", CreatedAt: now})
	if err != store.ErrNotFound {
		t.Errorf("AppendMessage to missing conversation: %v", err)
	}

	if err := s.DeleteConversation(ctx, conv.ID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if got, _ := s.ListMessages(ctx, conv.ID); len(got) != 0 {
		t.Errorf("messages survived delete: %d", len(got))
	}
	if _, err := s.GetConversation(ctx, conv.ID); err != store.ErrNotFound {
		t.Errorf("GetConversation after delete: %v", err)
	}
}

func TestOpen_MigratesOnceAndReopens(t *testing.T) {
	file := filepath.Join(t.TempDir(), "reader.db")
	ctx := context.Background()

	s, err := Open(file, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	v, err := s.SchemaVersion(ctx)
	if err != nil || v < 1 {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
	if err := s.UpsertProgress(ctx, &domain.ReadingProgress{BookID: "sai-gon-xua", FontSize: 18, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}
	s.Close()

	reopened, err := Open(file, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	again, _ := reopened.SchemaVersion(ctx)
	if again != v {
		t.Fatalf("schema version changed on reopen: %d != %d", again, v)
	}
	if _, err := reopened.GetProgress(ctx, "sai-gon-xua"); err != nil {
		t.Fatalf("progress lost across reopen: %v", err)
	}
}

func TestMigrationVersion(t *testing.T) {
	if v, err := migrationVersion("migrations/0007_add_things.sql"); err != nil || v != 7 {
		t.Fatalf("got %d, %v", v, err)
	}
	for _, bad := range []string{"migrations/init.sql", "migrations/x_init.sql", "migrations/0000_zero.sql"} {
		if _, err := migrationVersion(bad); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}
