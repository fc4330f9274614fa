package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/disanlib/reader-server/internal/chat"
	"github.com/disanlib/reader-server/internal/domain"
	"github.com/disanlib/reader-server/internal/errors"
	"github.com/disanlib/reader-server/internal/id"
	"github.com/disanlib/reader-server/internal/ratelimit"
	"github.com/disanlib/reader-server/internal/sse"
	"github.com/disanlib/reader-server/internal/store"
)

// MaxChatMessageLength bounds a single question, in runes.
const MaxChatMessageLength = 2000

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, c *domain.Conversation) error
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error)
}

// AnswerCache remembers remote answers to repeated questions.
type AnswerCache interface {
	GetAnswer(ctx context.Context, provider, query string) (*store.CachedAnswer, error)
	PutAnswer(ctx context.Context, provider, query, answer string, ttl time.Duration) error
	DeleteAnswer(ctx context.Context, provider, query string) error
	ClearAnswers(ctx context.Context) (int, error)
}

// ChatOptions tunes a ChatService.
type ChatOptions struct {
	CacheTTL          time.Duration
	Timeout           time.Duration
	MessagesPerMinute int
}

// ConversationView is a conversation with its messages.
type ConversationView struct {
	domain.Conversation
	Mode     string                `json:"mode"`
	Messages []*domain.ChatMessage `json:"messages"`
}

// SendResult pairs a question with its reply.
type SendResult struct {
	Question *domain.ChatMessage `json:"question"`
	Reply    *domain.ChatMessage `json:"reply"`
}

// Suggestions is the empty-chat prompt.
type Suggestions struct {
	Mode      string   `json:"mode"`
	Remote    bool     `json:"remote"`
	Questions []string `json:"questions"`
}

// ChatService runs conversations with the history assistant.
type ChatService struct {
	conversations ConversationStore
	answers       AnswerCache
	responder     chat.Responder
	limiter       *ratelimit.KeyedRateLimiter
	events        store.EventEmitter
	logger        *slog.Logger
	opts          ChatOptions

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewChatService creates a chat service. answers may be nil to disable the
// answer cache.
func NewChatService(conversations ConversationStore, answers AnswerCache, responder chat.Responder, events store.EventEmitter, logger *slog.Logger, opts ChatOptions) *ChatService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MessagesPerMinute <= 0 {
		opts.MessagesPerMinute = 10
	}
	return &ChatService{
		conversations: conversations,
		answers:       answers,
		responder:     responder,
		limiter:       ratelimit.PerMinute(opts.MessagesPerMinute),
		events:        events,
		logger:        logger,
		opts:          opts,
		pending:       make(map[string]struct{}),
	}
}

// Close stops the rate limiter's cleanup loop.
func (s *ChatService) Close() {
	s.limiter.Stop()
}

// Mode names the active responder.
func (s *ChatService) Mode() string {
	return s.responder.Name()
}

// Suggestions returns the starter questions and the active mode.
func (s *ChatService) Suggestions() Suggestions {
	return Suggestions{
		Mode:      s.Mode(),
		Remote:    chat.IsRemote(s.responder),
		Questions: chat.SuggestedQuestions(),
	}
}

// StartConversation creates a conversation opened by the welcome message.
func (s *ChatService) StartConversation(ctx context.Context) (*ConversationView, error) {
	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create conversation")
	}

	welcome, err := s.appendMessage(ctx, conv.ID, domain.ChatRoleAssistant, domain.ChatSourceWelcome,
		chat.WelcomeMessage(chat.IsRemote(s.responder)))
	if err != nil {
		return nil, err
	}
	conv.UpdatedAt = welcome.CreatedAt

	s.logger.Info("conversation started", "conversation_id", conv.ID, "mode", s.Mode())
	return &ConversationView{
		Conversation: *conv,
		Mode:         s.Mode(),
		Messages:     []*domain.ChatMessage{welcome},
	}, nil
}

// History returns a conversation and its messages in order.
func (s *ChatService) History(ctx context.Context, conversationID string) (*ConversationView, error) {
	conv, err := s.conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list messages")
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	return &ConversationView{Conversation: *conv, Mode: s.Mode(), Messages: msgs}, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	if _, err := s.conversation(ctx, conversationID); err != nil {
		return err
	}
	if err := s.conversations.DeleteConversation(ctx, conversationID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "delete conversation")
	}
	s.limiter.Forget(conversationID)
	return nil
}

// Send asks a question. Only one question per conversation may be awaiting
// its reply; a second one fails with CONFLICT. A failing responder yields the
// apology as the reply rather than an error.
func (s *ChatService) Send(ctx context.Context, conversationID, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("message text is required")
	}
	if utf8.RuneCountInString(text) > MaxChatMessageLength {
		return nil, errors.Validationf("message text exceeds %d characters", MaxChatMessageLength)
	}
	if _, err := s.conversation(ctx, conversationID); err != nil {
		return nil, err
	}
	// A send refused as a conflict must not spend rate limit quota.
	if !s.acquire(conversationID) {
		return nil, errors.Conflict("a reply is still pending for this conversation")
	}
	defer s.release(conversationID)
	if ok, wait := s.limiter.Check(conversationID); !ok {
		return nil, errors.RateLimitedFor("too many messages, slow down", wait)
	}

	question, err := s.appendMessage(ctx, conversationID, domain.ChatRoleUser, domain.ChatSourceUser, text)
	if err != nil {
		return nil, err
	}

	answer, source := s.answer(ctx, conversationID, text)

	reply, err := s.appendMessage(ctx, conversationID, domain.ChatRoleAssistant, source, answer)
	if err != nil {
		return nil, err
	}
	return &SendResult{Question: question, Reply: reply}, nil
}

// ForgetAnswers drops cached remote answers: the one for query under the
// active responder, or all of them when query is empty. It returns how many
// were removed.
func (s *ChatService) ForgetAnswers(ctx context.Context, query string) (int, error) {
	if s.answers == nil {
		return 0, nil
	}
	if strings.TrimSpace(query) == "" {
		n, err := s.answers.ClearAnswers(ctx)
		if err != nil {
			return 0, errors.Wrap(err, errors.CodeInternal, "clear answer cache")
		}
		s.logger.Info("answer cache cleared", "removed", n)
		return n, nil
	}

	provider := s.responder.Name()
	if _, err := s.answers.GetAnswer(ctx, provider, query); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.CodeInternal, "read answer cache")
	}
	if err := s.answers.DeleteAnswer(ctx, provider, query); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "delete cached answer")
	}
	return 1, nil
}

// answer consults the cache, then the responder, and falls back to the
// apology.
func (s *ChatService) answer(ctx context.Context, conversationID, text string) (string, domain.ChatSource) {
	provider := s.responder.Name()
	remote := chat.IsRemote(s.responder)

	if remote && s.answers != nil {
		cached, err := s.answers.GetAnswer(ctx, provider, text)
		switch {
		case err == nil:
			s.logger.Debug("chat answer from cache", "conversation_id", conversationID)
			return cached.Answer, domain.ChatSourceCache
		case !stderrors.Is(err, store.ErrNotFound):
			s.logger.Warn("answer cache read failed", "error", err)
		}
	}

	rctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.responder.Respond(rctx, text)
	if err != nil {
		s.logger.Error("chat responder failed",
			"conversation_id", conversationID,
			"provider", provider,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return chat.Apology, domain.ChatSourceApology
	}

	if remote && s.answers != nil && s.opts.CacheTTL > 0 {
		if err := s.answers.PutAnswer(ctx, provider, text, answer, s.opts.CacheTTL); err != nil {
			s.logger.Warn("answer cache write failed", "error", err)
		}
	}
	return answer, domain.ChatSource(provider)
}

func (s *ChatService) conversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if err := uuid.Validate(conversationID); err != nil {
		return nil, errors.NotFoundf("conversation %q not found", conversationID)
	}
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFoundf("conversation %q not found", conversationID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load conversation")
	}
	return conv, nil
}

func (s *ChatService) appendMessage(ctx context.Context, conversationID string, role domain.ChatRole, source domain.ChatSource, text string) (*domain.ChatMessage, error) {
	msgID, err := id.Generate(id.PrefixMessage)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create message")
	}
	msg := &domain.ChatMessage{
		ID:             msgID,
		ConversationID: conversationID,
		Role:           role,
		Source:         source,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("conversation %q not found", conversationID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "store message")
	}

	s.events.Emit(sse.NewChatMessageEvent(conversationID, sse.ChatMessageData{
		MessageID: msg.ID,
		Role:      string(msg.Role),
		Source:    string(msg.Source),
		Text:      msg.Text,
	}))
	return msg, nil
}

func (s *ChatService) acquire(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[conversationID]; busy {
		return false
	}
	s.pending[conversationID] = struct{}{}
	return true
}

func (s *ChatService) release(conversationID string) {
	s.mu.Lock()
	delete(s.pending, conversationID)
	s.mu.Unlock()
}
