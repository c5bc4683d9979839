package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

const (
	// MaxAssistantMessageLength is the longest accepted user message, in characters.
	MaxAssistantMessageLength = 2000

	SourceAI      = "ai"
	SourceChatbot = "chatbot"
)

const assistantSystemPrompt = `You are Sara, the assistant of a vacation rental marketplace.
Help guests find and book stays, understand payments, cancellations and refunds, and help hosts list and manage properties.
Answer briefly and in plain language. If a question is about a specific booking or payment, ask the user to check their dashboard or contact support.
Never invent prices, availability or policies.`

// AssistantConfig tunes session retention
type AssistantConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxHistory    int
}

// AssistantRequest is the body of POST /api/ai-assistant
type AssistantRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// AssistantResponse carries the reply and where it came from
type AssistantResponse struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"sessionId"`
	Source    string   `json:"source"`
	Options   []string `json:"options,omitempty"`
}

type assistantSession struct {
	history    []providers.ChatMessage
	lastActive time.Time
}

// AssistantService holds short-lived conversations with the AI provider and
// falls back to the rule-based chatbot when the provider is missing or fails.
type AssistantService struct {
	provider  providers.AssistantProvider
	chatbot   *ChatbotService
	validator *validation.Validator
	cfg       AssistantConfig
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*assistantSession
}

// NewAssistantService creates a new assistant service. provider may be nil.
func NewAssistantService(provider providers.AssistantProvider, chatbot *ChatbotService, v *validation.Validator, cfg AssistantConfig) *AssistantService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 20
	}
	return &AssistantService{
		provider:  provider,
		chatbot:   chatbot,
		validator: v,
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*assistantSession),
	}
}

// Chat appends the message to the session and returns the next reply
func (s *AssistantService) Chat(ctx context.Context, req AssistantRequest) (*AssistantResponse, error) {
	message := s.validator.Sanitize(req.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required")
	}
	if utf8.RuneCountInString(message) > MaxAssistantMessageLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("message must be at most %d characters long", MaxAssistantMessageLength))
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	history := s.appendMessage(sessionID, providers.ChatMessage{Role: "user", Content: message})

	if s.provider != nil {
		messages := make([]providers.ChatMessage, 0, len(history)+1)
		messages = append(messages, providers.ChatMessage{Role: "system", Content: assistantSystemPrompt})
		messages = append(messages, history...)

		reply, err := s.provider.Chat(ctx, messages)
		if err == nil && reply != "" {
			s.appendMessage(sessionID, providers.ChatMessage{Role: "assistant", Content: reply})
			return &AssistantResponse{Reply: reply, SessionID: sessionID, Source: SourceAI}, nil
		}
		log.Ctx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("Assistant provider failed, answering with chatbot")
	}

	fallback := s.chatbot.Reply(message)
	s.appendMessage(sessionID, providers.ChatMessage{Role: "assistant", Content: fallback.Message})
	return &AssistantResponse{
		Reply:     fallback.Message,
		SessionID: sessionID,
		Source:    SourceChatbot,
		Options:   fallback.Options,
	}, nil
}

// appendMessage adds msg to the session, trims it to MaxHistory and returns a copy of the history
func (s *AssistantService) appendMessage(sessionID string, msg providers.ChatMessage) []providers.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		session = &assistantSession{}
		s.sessions[sessionID] = session
	}
	session.history = append(session.history, msg)
	if over := len(session.history) - s.cfg.MaxHistory; over > 0 {
		session.history = append([]providers.ChatMessage(nil), session.history[over:]...)
	}
	session.lastActive = s.now()

	out := make([]providers.ChatMessage, len(session.history))
	copy(out, session.history)
	return out
}

// SessionCount returns the number of live sessions
func (s *AssistantService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than SessionTTL and returns how many were removed
func (s *AssistantService) Sweep() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper evicts idle sessions every SweepInterval until ctx is cancelled
func (s *AssistantService) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Evicted idle assistant sessions")
			}
		}
	}
}
