package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/disanlib/reader-server/internal/api/dto"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/service"
)

func (s *Server) registerPreferencesRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get reader preferences",
		Description: "Returns the theme, font size, and active palette",
		Tags:        []string{"Preferences"},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPatch,
		Path:        "/api/v1/preferences",
		Summary:     "Update reader preferences",
		Description: "Changes the theme or font size. Font sizes are clamped; a font change repaginates open sessions.",
		Tags:        []string{"Preferences"},
	}, s.handleUpdatePreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "listThemes",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences/themes",
		Summary:     "List themes",
		Description: "Returns the selectable themes with preview colors",
		Tags:        []string{"Preferences"},
	}, s.handleListThemes)
}

// PreferencesResponse is the preferences with the palette they select.
type PreferencesResponse struct {
	domain.ReaderPreferences
	Palette     domain.Palette `json:"palette"`
	MinFontSize int            `json:"min_font_size"`
	MaxFontSize int            `json:"max_font_size"`
}

// PreferencesOutput wraps preferences for Huma.
type PreferencesOutput struct {
	Body PreferencesResponse
}

// UpdatePreferencesRequest is the PATCH body. Adjust steps the current font
// size and is ignored when font_size is given.
type UpdatePreferencesRequest struct {
	Theme    *string `json:"theme,omitempty" validate:"omitempty,theme" doc:"Theme key"`
	FontSize *int    `json:"font_size,omitempty" doc:"Font size in pixels"`
	Adjust   string  `json:"adjust,omitempty" validate:"omitempty,oneof=increase decrease" doc:"increase or decrease the font size by one step"`
}

// UpdatePreferencesInput wraps the PATCH body.
type UpdatePreferencesInput struct {
	Body UpdatePreferencesRequest
}

// ThemesOutput wraps the theme list for Huma.
type ThemesOutput struct {
	Body dto.ListResponse[domain.ThemeOption]
}

func preferencesResponse(p *domain.ReaderPreferences) PreferencesResponse {
	return PreferencesResponse{
		ReaderPreferences: *p,
		Palette:           p.Palette(),
		MinFontSize:       domain.MinFontSize,
		MaxFontSize:       domain.MaxFontSize,
	}
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	prefs, err := s.services.Preferences.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: preferencesResponse(prefs)}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	var upd service.PreferencesUpdate
	if input.Body.Theme != nil {
		theme := domain.ThemeKey(*input.Body.Theme)
		upd.Theme = &theme
	}

	switch {
	case input.Body.FontSize != nil:
		upd.FontSize = input.Body.FontSize
	case input.Body.Adjust != "":
		current, err := s.services.Preferences.Get(ctx)
		if err != nil {
			return nil, err
		}
		size := current.FontSize + domain.FontSizeStep
		if input.Body.Adjust == "decrease" {
			size = current.FontSize - domain.FontSizeStep
		}
		upd.FontSize = &size
	}

	prefs, err := s.services.Preferences.Update(ctx, upd)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: preferencesResponse(prefs)}, nil
}

func (s *Server) handleListThemes(_ context.Context, _ *struct{}) (*ThemesOutput, error) {
	return &ThemesOutput{Body: dto.NewList(s.services.Preferences.Themes())}, nil
}
