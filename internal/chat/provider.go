package chat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disanlib/reader-server/internal/logger"
)

// Provider names accepted by NewResponder.
const (
	ProviderAuto      = "auto"
	ProviderGemini    = NameGemini
	ProviderAnthropic = NameAnthropic
	ProviderLocal     = NameLocal
)

// Settings selects and configures a responder.
type Settings struct {
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	RulesPath       string
	Timeout         time.Duration
}

// NewResponder builds the responder named by s.Provider. "auto" prefers
// Gemini, then Anthropic, and falls back to the keyword responder when no
// key is set.
func NewResponder(s Settings, log *slog.Logger) (Responder, error) {
	if log == nil {
		log = logger.Discard()
	}

	provider := s.Provider
	if provider == "" || provider == ProviderAuto {
		switch {
		case s.GeminiAPIKey != "":
			provider = ProviderGemini
		case s.AnthropicAPIKey != "":
			provider = ProviderAnthropic
		default:
			provider = ProviderLocal
		}
	}

	var (
		r   Responder
		err error
	)
	switch provider {
	case ProviderGemini:
		r, err = NewGeminiClient(GeminiOptions{
			APIKey:  s.GeminiAPIKey,
			Model:   s.GeminiModel,
			BaseURL: s.GeminiBaseURL,
			Timeout: s.Timeout,
			Logger:  log,
		})
	case ProviderAnthropic:
		r, err = NewAnthropicClient(AnthropicOptions{
			APIKey:  s.AnthropicAPIKey,
			Model:   s.AnthropicModel,
			Timeout: s.Timeout,
			Logger:  log,
		})
	case ProviderLocal:
		var rules *RuleSet
		rules, err = LoadRules(s.RulesPath)
		if err == nil {
			r = NewKeywordResponder(rules)
		}
	default:
		return nil, fmt.Errorf("unknown chat provider %q", s.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s responder: %w", provider, err)
	}

	log.Info("chat responder ready", "provider", r.Name())
	return r, nil
}
