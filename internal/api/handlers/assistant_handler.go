package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/application/services"
)

// AssistantService defines the AI assistant operation used by the handler.
type AssistantService interface {
	Chat(ctx context.Context, req services.AssistantRequest) (*services.AssistantResponse, error)
}

// ChatbotService defines the rule-based chatbot used by the handler.
type ChatbotService interface {
	Reply(message string) services.ChatReply
}

// AssistantHandler serves the Sara chatbot and the AI assistant
type AssistantHandler struct {
	assistant AssistantService
	chatbot   ChatbotService
	limiter   *RateLimiter
}

// NewAssistantHandler creates a new assistant handler. limiter may be nil.
func NewAssistantHandler(assistant AssistantService, chatbot ChatbotService, limiter *RateLimiter) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		chatbot:   chatbot,
		limiter:   limiter,
	}
}

type chatbotRequest struct {
	Message string `json:"message"`
}

// Chatbot handles POST /api/chatbot
func (h *AssistantHandler) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if utf8.RuneCountInString(req.Message) > services.MaxAssistantMessageLength {
		respondWithError(w, http.StatusBadRequest, "message is too long")
		return
	}
	respondWithJSON(w, http.StatusOK, h.chatbot.Reply(req.Message))
}

// Assistant handles POST /api/ai-assistant. Callers are rate limited by user
// id, or by peer address when anonymous.
func (h *AssistantHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	var req services.AssistantRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	key := "ip:" + h.limiter.ClientIP(r)
	if actor := middleware.ActorFromContext(r.Context()); actor.UserID != "" {
		key = "user:" + actor.UserID
	}
	if allowed, retryAfter := h.limiter.Allow(r.Context(), key); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	resp, err := h.assistant.Chat(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Max(1, math.Ceil(d.Seconds())))
}
