package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/disanlib/reader-server/internal/service"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "startConversation",
		Method:        http.MethodPost,
		Path:          "/api/v1/chat/conversations",
		Summary:       "Start conversation",
		Description:   "Creates a conversation opened by the assistant's welcome message",
		Tags:          []string{"Chat"},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartConversation)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConversation",
		Method:      http.MethodGet,
		Path:        "/api/v1/chat/conversations/{id}",
		Summary:     "Get conversation",
		Description: "Returns a conversation with its messages in order",
		Tags:        []string{"Chat"},
	}, s.handleGetConversation)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteConversation",
		Method:        http.MethodDelete,
		Path:          "/api/v1/chat/conversations/{id}",
		Summary:       "Delete conversation",
		Description:   "Removes a conversation and its messages",
		Tags:          []string{"Chat"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteConversation)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendChatMessage",
		Method:      http.MethodPost,
		Path:        "/api/v1/chat/conversations/{id}/messages",
		Summary:     "Send message",
		Description: "Asks a question and waits for the reply. A failed model call yields an apology reply, not an error.",
		Tags:        []string{"Chat"},
	}, s.handleSendMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "chatSuggestions",
		Method:      http.MethodGet,
		Path:        "/api/v1/chat/suggestions",
		Summary:     "Suggested questions",
		Description: "Returns starter questions and whether a remote model answers",
		Tags:        []string{"Chat"},
	}, s.handleChatSuggestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgetChatAnswers",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chat/cache",
		Summary:     "Forget cached answers",
		Description: "Drops the cached answer to one question, or every cached answer when q is empty",
		Tags:        []string{"Chat"},
	}, s.handleForgetAnswers)
}

// === DTOs ===

// ConversationIDInput identifies a conversation.
type ConversationIDInput struct {
	ID string `path:"id" doc:"Conversation ID"`
}

// ConversationOutput wraps a conversation for Huma.
type ConversationOutput struct {
	Body service.ConversationView
}

// SendMessageRequest is the body for sending a message.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000" doc:"Question text"`
}

// SendMessageInput wraps the send request.
type SendMessageInput struct {
	ID   string `path:"id" doc:"Conversation ID"`
	Body SendMessageRequest
}

// SendMessageOutput wraps the question and reply.
type SendMessageOutput struct {
	Body service.SendResult
}

// SuggestionsOutput wraps the suggestions.
type SuggestionsOutput struct {
	Body service.Suggestions
}

// ForgetAnswersInput selects which cached answers to drop.
type ForgetAnswersInput struct {
	Query string `query:"q" maxLength:"2000" doc:"Question whose cached answer to drop; empty drops all"`
}

// ForgetAnswersOutput reports how many answers were dropped.
type ForgetAnswersOutput struct {
	Body struct {
		Removed int `json:"removed"`
	}
}

// === Handlers ===

func (s *Server) handleStartConversation(ctx context.Context, _ *struct{}) (*ConversationOutput, error) {
	conv, err := s.services.Chat.StartConversation(ctx)
	if err != nil {
		return nil, err
	}
	return &ConversationOutput{Body: *conv}, nil
}

func (s *Server) handleGetConversation(ctx context.Context, input *ConversationIDInput) (*ConversationOutput, error) {
	conv, err := s.services.Chat.History(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationOutput{Body: *conv}, nil
}

func (s *Server) handleDeleteConversation(ctx context.Context, input *ConversationIDInput) (*struct{}, error) {
	if err := s.services.Chat.DeleteConversation(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleSendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	result, err := s.services.Chat.Send(ctx, input.ID, input.Body.Text)
	if err != nil {
		return nil, err
	}
	return &SendMessageOutput{Body: *result}, nil
}

func (s *Server) handleChatSuggestions(_ context.Context, _ *struct{}) (*SuggestionsOutput, error) {
	return &SuggestionsOutput{Body: s.services.Chat.Suggestions()}, nil
}

func (s *Server) handleForgetAnswers(ctx context.Context, input *ForgetAnswersInput) (*ForgetAnswersOutput, error) {
	n, err := s.services.Chat.ForgetAnswers(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	out := &ForgetAnswersOutput{}
	out.Body.Removed = n
	return out, nil
}
