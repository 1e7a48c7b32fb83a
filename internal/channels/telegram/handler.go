package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/internal/conversation"
	"github.com/costatartessos/hotel-assistant/internal/observability/metrics"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Orchestrator is the conversation service surface the webhook needs.
type Orchestrator interface {
	StartConversation(ctx context.Context, req conversation.StartRequest) error
	HandleUpdate(ctx context.Context, update *chat.Update) error
}

// WebhookHandler serves the Telegram bot webhook: /start opens a fresh
// conversation, everything else flows through the orchestrator.
type WebhookHandler struct {
	normalizer   *Normalizer
	adapter      *Adapter
	orchestrator Orchestrator
	metrics      *metrics.ChatMetrics
	logger       *logging.Logger
}

// NewWebhookHandler wires the webhook endpoint.
func NewWebhookHandler(normalizer *Normalizer, adapter *Adapter, orchestrator Orchestrator, m *metrics.ChatMetrics, logger *logging.Logger) *WebhookHandler {
	if normalizer == nil {
		panic("telegram: normalizer cannot be nil")
	}
	if adapter == nil {
		panic("telegram: adapter cannot be nil")
	}
	if orchestrator == nil {
		panic("telegram: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		normalizer:   normalizer,
		adapter:      adapter,
		orchestrator: orchestrator,
		metrics:      m,
		logger:       logger.Component("telegram"),
	}
}

// HandleBody processes one bot-API update delivery and returns the HTTP
// status and body to answer with. Telegram redelivers on non-2xx, so only
// undecodable payloads fail the request.
func (h *WebhookHandler) HandleBody(ctx context.Context, body []byte) (int, string) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.metrics.ObserveInbound("telegram", "malformed")
		return http.StatusBadRequest, "Bad request"
	}

	if IsStartCommand(update) {
		msg := update.Message
		contact := chat.Contact{
			ChannelID:   strconv.FormatInt(msg.Chat.ID, 10),
			DisplayName: displayName(msg.From),
		}
		h.adapter.Typing(ctx, contact)
		if err := h.orchestrator.StartConversation(ctx, conversation.StartRequest{
			ContactID:   contact.ChannelID,
			DisplayName: contact.DisplayName,
		}); err != nil {
			h.metrics.ObserveInbound("telegram", "error")
			h.logger.Error("start conversation failed", "chat_id", contact.ChannelID, "error", err)
			return http.StatusOK, "Greeting failed"
		}
		h.metrics.ObserveInbound("telegram", "started")
		return http.StatusOK, "Conversation started"
	}

	parsed, ok := h.normalizer.ParseUpdate(update)
	if !ok {
		h.metrics.ObserveInbound("telegram", "skipped")
		return http.StatusOK, "Ignored"
	}

	if update.CallbackQuery != nil {
		h.adapter.AcknowledgeCallback(ctx, update.CallbackQuery.ID)
	} else {
		h.adapter.Typing(ctx, parsed.Sender)
	}

	if err := h.orchestrator.HandleUpdate(ctx, parsed); err != nil {
		h.metrics.ObserveInbound("telegram", "error")
		h.logger.Error("update handling failed", "sender", parsed.Sender.ChannelID, "error", err)
		return http.StatusOK, "Reply failed"
	}
	h.metrics.ObserveInbound("telegram", "handled")
	return http.StatusOK, "Replied"
}
