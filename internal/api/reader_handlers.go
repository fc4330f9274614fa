package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/disanlib/reader-server/internal/api/dto"
	"github.com/disanlib/reader-server/internal/service"
)

func (s *Server) registerReaderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "openReaderSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/reader/sessions",
		Summary:       "Open reading session",
		Description:   "Opens a book at the saved position, or at its first page",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusCreated,
	}, s.handleOpenSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReaderSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/reader/sessions/{id}",
		Summary:     "Get reading session",
		Description: "Returns the current page of a session",
		Tags:        []string{"Reader"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "nextPage",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/sessions/{id}/next",
		Summary:     "Next page",
		Description: "Turns one page forward, crossing into the next chapter at a chapter end. No-op on the last page.",
		Tags:        []string{"Reader"},
	}, s.handleNextPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "previousPage",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/sessions/{id}/previous",
		Summary:     "Previous page",
		Description: "Turns one page back, landing on the last page of the previous chapter at a chapter start. No-op on the first page.",
		Tags:        []string{"Reader"},
	}, s.handlePreviousPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "jumpToChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/reader/sessions/{id}/jump",
		Summary:     "Jump to chapter",
		Description: "Opens the first page of a chapter",
		Tags:        []string{"Reader"},
	}, s.handleJumpToChapter)

	huma.Register(s.api, huma.Operation{
		OperationID:   "closeReaderSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/reader/sessions/{id}",
		Summary:       "Close reading session",
		Description:   "Ends a session. The position stays saved.",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleCloseSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/reader/progress",
		Summary:     "Continue reading",
		Description: "Returns saved positions, most recent first",
		Tags:        []string{"Reader"},
	}, s.handleListProgress)

	huma.Register(s.api, huma.Operation{
		OperationID:   "forgetReadingProgress",
		Method:        http.MethodDelete,
		Path:          "/api/v1/reader/progress/{book_id}",
		Summary:       "Forget reading progress",
		Description:   "Drops the saved position of a book",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleForgetProgress)
}

// === DTOs ===

// OpenSessionRequest is the body for opening a session.
type OpenSessionRequest struct {
	BookID string `json:"book_id" validate:"required" doc:"Book to open"`
}

// OpenSessionInput wraps the open request.
type OpenSessionInput struct {
	Body OpenSessionRequest
}

// SessionIDInput identifies a session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// JumpRequest is the body for jumping to a chapter.
type JumpRequest struct {
	ChapterIndex *int `json:"chapter_index" validate:"required" doc:"Zero-based chapter index"`
}

// JumpInput wraps the jump request.
type JumpInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body JumpRequest
}

// SessionResponse is a session view plus the media and background for the
// current page.
type SessionResponse struct {
	service.SessionView
	BackgroundImage *dto.Image  `json:"background_image,omitempty"`
	Media           []dto.Media `json:"media"`
}

// SessionOutput wraps a session for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// ProgressInput contains parameters for the continue-reading list.
type ProgressInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Max entries (0 for all)"`
}

// ProgressOutput wraps the continue-reading list.
type ProgressOutput struct {
	Body dto.ListResponse[service.ContinueReading]
}

// ForgetProgressInput identifies a book.
type ForgetProgressInput struct {
	BookID string `path:"book_id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleOpenSession(ctx context.Context, input *OpenSessionInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	view, err := s.services.Reader.Open(ctx, input.Body.BookID)
	return sessionOutput(view, err)
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	view, err := s.services.Reader.Get(ctx, input.ID)
	return sessionOutput(view, err)
}

func (s *Server) handleNextPage(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	view, err := s.services.Reader.Next(ctx, input.ID)
	return sessionOutput(view, err)
}

func (s *Server) handlePreviousPage(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	view, err := s.services.Reader.Previous(ctx, input.ID)
	return sessionOutput(view, err)
}

func (s *Server) handleJumpToChapter(ctx context.Context, input *JumpInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	view, err := s.services.Reader.JumpToChapter(ctx, input.ID, *input.Body.ChapterIndex)
	return sessionOutput(view, err)
}

func (s *Server) handleCloseSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	if err := s.services.Reader.Close(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleListProgress(ctx context.Context, input *ProgressInput) (*ProgressOutput, error) {
	entries, err := s.services.Reader.ListProgress(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: dto.NewList(entries)}, nil
}

func (s *Server) handleForgetProgress(ctx context.Context, input *ForgetProgressInput) (*struct{}, error) {
	if err := s.services.Reader.ForgetProgress(ctx, input.BookID); err != nil {
		return nil, err
	}
	return nil, nil
}

// sessionOutput decorates a view with the current chapter's background and
// the media linked from the page text.
func sessionOutput(view *service.SessionView, err error) (*SessionOutput, error) {
	if err != nil {
		return nil, err
	}

	resp := SessionResponse{SessionView: *view, Media: make([]dto.Media, 0, len(view.Media))}
	if view.BackgroundImage != nil {
		img := dto.ImageFrom(*view.BackgroundImage)
		resp.BackgroundImage = &img
	}
	for _, m := range view.Media {
		resp.Media = append(resp.Media, dto.MediaFrom(m))
	}
	return &SessionOutput{Body: resp}, nil
}
