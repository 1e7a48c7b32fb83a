package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

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

// newConversationRequest is the internal trigger that opens a conversation
// with a contact. It shares the webhook endpoint and is told apart from
// Cloud API deliveries by its object tag.
type newConversationRequest struct {
	Object        string `json:"object"`
	SenderID      string `json:"sender_id"`
	RecipientID   string `json:"recipient_id"`
	RecipientName string `json:"recipient_name"`
}

// WebhookHandler serves the WhatsApp webhook endpoint: the subscription
// handshake on GET and message deliveries on POST. The same handler backs
// the Lambda entrypoint and the local HTTP server.
type WebhookHandler struct {
	normalizer   *Normalizer
	orchestrator Orchestrator
	verifyToken  string
	metrics      *metrics.ChatMetrics
	logger       *logging.Logger
}

// NewWebhookHandler wires the webhook endpoint.
func NewWebhookHandler(normalizer *Normalizer, orchestrator Orchestrator, verifyToken string, m *metrics.ChatMetrics, logger *logging.Logger) *WebhookHandler {
	if normalizer == nil {
		panic("whatsapp: normalizer cannot be nil")
	}
	if orchestrator == nil {
		panic("whatsapp: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		normalizer:   normalizer,
		orchestrator: orchestrator,
		verifyToken:  verifyToken,
		metrics:      m,
		logger:       logger.Component("whatsapp"),
	}
}

// HandleRequest processes one webhook request and returns the HTTP status
// and body to answer with.
func (h *WebhookHandler) HandleRequest(ctx context.Context, method string, query map[string]string, body []byte) (int, string) {
	switch method {
	case http.MethodGet:
		if challenge, ok := VerificationChallenge(query, h.verifyToken); ok {
			return http.StatusOK, challenge
		}
		return http.StatusForbidden, "Forbidden"

	case http.MethodPost:
		return h.handleDelivery(ctx, body)

	default:
		return http.StatusMethodNotAllowed, "Unsupported HTTP method"
	}
}

func (h *WebhookHandler) handleDelivery(ctx context.Context, body []byte) (int, string) {
	var req newConversationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.metrics.ObserveInbound("whatsapp", "malformed")
		return http.StatusBadRequest, "Bad request"
	}

	switch req.Object {
	case ObjectNewConversation:
		if err := h.orchestrator.StartConversation(ctx, conversation.StartRequest{
			ContactID:   req.RecipientID,
			DisplayName: req.RecipientName,
		}); err != nil {
			h.metrics.ObserveInbound("whatsapp", "error")
			h.logger.Error("start conversation failed", "recipient", req.RecipientID, "error", err)
			return http.StatusInternalServerError, "Could not start conversation"
		}
		h.metrics.ObserveInbound("whatsapp", "started")
		return http.StatusOK, "Conversation started with contact"

	case ObjectBusinessAccount:
		updates, err := h.normalizer.Parse(body)
		if err != nil {
			if errors.Is(err, ErrMalformedPayload) {
				h.metrics.ObserveInbound("whatsapp", "malformed")
				return http.StatusBadRequest, "Bad request"
			}
			h.metrics.ObserveInbound("whatsapp", "error")
			return http.StatusInternalServerError, "Webhook processing failed"
		}

		// Reply errors are per-update: the guest was already notified
		// where that matters, and the webhook must not be redelivered.
		for _, update := range updates {
			update := update
			if err := h.orchestrator.HandleUpdate(ctx, &update); err != nil {
				h.logger.Error("update handling failed", "sender", update.Sender.ChannelID, "error", err)
			}
		}
		h.metrics.ObserveInbound("whatsapp", "handled")
		return http.StatusOK, "Replied to the contact"

	default:
		h.metrics.ObserveInbound("whatsapp", "malformed")
		return http.StatusBadRequest, "Bad request"
	}
}
