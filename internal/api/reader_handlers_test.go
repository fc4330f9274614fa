package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disanlib/reader-server/internal/api/dto"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/reader"
	"github.com/disanlib/reader-server/internal/service"
)

func openSession(t *testing.T, ts *testServer, bookID string) SessionResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/reader/sessions", map[string]any{"book_id": bookID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	env := decodeEnvelope(t, resp.Body.Bytes())
	require.True(t, env.Success)

	var sess SessionResponse
	require.NoError(t, jsonUnmarshal(env.Data, &sess))
	return sess
}

func TestReaderSession_Navigation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	sess := openSession(t, ts, "sai-gon-xua")
	require.NotEmpty(t, sess.SessionID)
	assert.Equal(t, reader.Position{}, sess.View.Position)
	assert.True(t, sess.View.IsFirstPage)
	assert.Equal(t, domain.DefaultFontSize, sess.View.FontSize)
	assert.Equal(t, domain.DefaultTheme, sess.Theme)
	require.NotNil(t, sess.BackgroundImage)

	// The first page links the market photo.
	assert.Equal(t, []string{"cho-xua"}, sess.View.MediaKeys)
	require.Len(t, sess.Media, 1)
	assert.Equal(t, domain.MediaKindImage, sess.Media[0].Kind)

	base := "/api/v1/reader/sessions/" + sess.SessionID

	// Previous on the first page is a no-op.
	resp := ts.api.Post(base + "/previous")
	prev := data[SessionResponse](t, resp.Code, resp.Body.Bytes())
	require.NotNil(t, prev.Transition)
	assert.Equal(t, reader.DirectionNone, prev.Transition.Direction)
	assert.Equal(t, reader.Position{}, prev.View.Position)

	resp = ts.api.Post(base + "/next")
	next := data[SessionResponse](t, resp.Code, resp.Body.Bytes())
	assert.Equal(t, reader.DirectionForward, next.Transition.Direction)
	assert.Equal(t, reader.Position{ChapterIndex: 0, PageIndex: 1}, next.View.Position)
	assert.Equal(t, []string{"moc-thoi-gian"}, next.View.MediaKeys, "the missing ban-do key is skipped")

	resp = ts.api.Post(base+"/jump", map[string]any{"chapter_index": 1})
	jumped := data[SessionResponse](t, resp.Code, resp.Body.Bytes())
	assert.Equal(t, reader.Position{ChapterIndex: 1, PageIndex: 0}, jumped.View.Position)
	assert.Nil(t, jumped.BackgroundImage)

	resp = ts.api.Get(base)
	current := data[SessionResponse](t, resp.Code, resp.Body.Bytes())
	assert.Equal(t, jumped.View.Position, current.View.Position)
	assert.Nil(t, current.Transition)
}

func TestReaderSession_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/reader/sessions", map[string]any{"book_id": "khong-co"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/reader/sessions", map[string]any{"book_id": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp.Body.Bytes()).Code)

	resp = ts.api.Get("/api/v1/reader/sessions/rdr_khongco")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	sess := openSession(t, ts, "sai-gon-xua")
	base := "/api/v1/reader/sessions/" + sess.SessionID

	resp = ts.api.Post(base+"/jump", map[string]any{"chapter_index": 7})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp.Body.Bytes()).Code)

	resp = ts.api.Delete(base)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Post(base + "/next")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReaderSession_FontChangeRepaginates(t *testing.T) {
	ts := setupTestServer(t, Options{})

	sess := openSession(t, ts, "sai-gon-xua")
	base := "/api/v1/reader/sessions/" + sess.SessionID
	ts.api.Post(base + "/next")

	resp := ts.api.Patch("/api/v1/preferences", map[string]any{"font_size": domain.MaxFontSize})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(base)
	view := data[SessionResponse](t, resp.Code, resp.Body.Bytes())
	assert.Equal(t, domain.MaxFontSize, view.View.FontSize)
	assert.Equal(t, reader.Position{ChapterIndex: 0, PageIndex: 0}, view.View.Position)
	assert.GreaterOrEqual(t, view.View.TotalPages, sess.View.TotalPages)
}

func TestReadingProgress(t *testing.T) {
	ts := setupTestServer(t, Options{})

	sess := openSession(t, ts, "sai-gon-xua")
	ts.api.Post("/api/v1/reader/sessions/" + sess.SessionID + "/next")

	resp := ts.api.Get("/api/v1/reader/progress")
	list := data[dto.ListResponse[service.ContinueReading]](t, resp.Code, resp.Body.Bytes())
	require.Len(t, list.Items, 1)
	assert.Equal(t, "sai-gon-xua", list.Items[0].BookID)
	assert.Equal(t, "Sài Gòn Xưa", list.Items[0].BookTitle)
	assert.Equal(t, 1, list.Items[0].PageIndex)

	// A new session resumes where the last one stopped.
	again := openSession(t, ts, "sai-gon-xua")
	assert.Equal(t, reader.Position{ChapterIndex: 0, PageIndex: 1}, again.View.Position)

	resp = ts.api.Delete("/api/v1/reader/progress/sai-gon-xua")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/reader/progress")
	list = data[dto.ListResponse[service.ContinueReading]](t, resp.Code, resp.Body.Bytes())
	assert.Empty(t, list.Items)
}
