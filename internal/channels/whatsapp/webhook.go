package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

const (
	// ObjectBusinessAccount tags regular Cloud API deliveries.
	ObjectBusinessAccount = "whatsapp_business_account"

	// ObjectNewConversation tags the out-of-band directive that starts a
	// conversation with a contact. It bypasses normal parsing.
	ObjectNewConversation = "new_conversation_request"
)

var (
	// ErrMalformedPayload indicates a required structural field is missing;
	// the delivery is rejected with a client error.
	ErrMalformedPayload = errors.New("whatsapp: request body does not conform to the Cloud API webhook spec")

	// ErrUnsupportedMessage indicates a message type outside the recognized
	// set. Soft: the delivery is accepted, the message is skipped.
	ErrUnsupportedMessage = errors.New("whatsapp: unsupported message type")
)

// Normalizer turns raw Cloud API webhook deliveries into ordered Update
// sequences over the shared conversation model. Parsing is pure given a
// fixed directory state; the directory itself is updated from every
// observed profile block.
type Normalizer struct {
	directory chat.Directory
	registry  *chat.Registry
	logger    *logging.Logger
}

// NewNormalizer wires a normalizer around the injected contact directory
// and conversation registry.
func NewNormalizer(directory chat.Directory, registry *chat.Registry, logger *logging.Logger) *Normalizer {
	if directory == nil {
		panic("whatsapp: contact directory cannot be nil")
	}
	if registry == nil {
		panic("whatsapp: conversation registry cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{directory: directory, registry: registry, logger: logger}
}

// Parse converts one webhook delivery into updates, in payload order.
// Receipt-only deliveries yield an empty slice. Unsupported message types
// and messages from unknown senders are skipped, not errors: the platform
// retries rejected deliveries and a retry would not fix either condition.
func (n *Normalizer) Parse(body []byte) ([]chat.Update, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return n.ParsePayload(payload)
}

// ParsePayload normalizes an already decoded delivery.
func (n *Normalizer) ParsePayload(payload WebhookPayload) ([]chat.Update, error) {
	if payload.Object != ObjectBusinessAccount {
		return nil, fmt.Errorf("%w: unknown object %q", ErrMalformedPayload, payload.Object)
	}
	if payload.Entry == nil {
		return nil, fmt.Errorf("%w: missing entry list", ErrMalformedPayload)
	}

	var updates []chat.Update
	for _, entry := range payload.Entry {
		if entry.Changes == nil {
			return nil, fmt.Errorf("%w: missing changes list", ErrMalformedPayload)
		}
		for _, change := range entry.Changes {
			changeUpdates, err := n.parseChange(change)
			if err != nil {
				return nil, err
			}
			updates = append(updates, changeUpdates...)
		}
	}
	return updates, nil
}

func (n *Normalizer) parseChange(change Change) ([]chat.Update, error) {
	if change.Field != "messages" {
		return nil, fmt.Errorf("%w: unknown change field %q", ErrMalformedPayload, change.Field)
	}
	value := change.Value
	if value.MessagingProduct != "whatsapp" {
		return nil, fmt.Errorf("%w: unexpected messaging product %q", ErrMalformedPayload, value.MessagingProduct)
	}
	if value.Metadata == nil {
		return nil, fmt.Errorf("%w: missing metadata block", ErrMalformedPayload)
	}

	// Read receipts and delivery statuses carry no messages; skip them
	// silently so the platform does not retry.
	if value.Messages == nil && value.Statuses != nil {
		return nil, nil
	}

	if value.Contacts == nil {
		return nil, fmt.Errorf("%w: missing contacts block", ErrMalformedPayload)
	}
	for _, contact := range value.Contacts {
		if contact.WaID == "" || contact.Profile.Name == "" {
			return nil, fmt.Errorf("%w: incomplete contact profile", ErrMalformedPayload)
		}
		n.directory.Put(contact.WaID, contact.Profile.Name)
	}

	if value.Messages == nil {
		return nil, fmt.Errorf("%w: missing messages block", ErrMalformedPayload)
	}

	bot := chat.Contact{
		ChannelID:   value.Metadata.PhoneNumberID,
		DisplayName: value.Metadata.DisplayPhoneNumber,
	}

	var updates []chat.Update
	for _, msg := range value.Messages {
		message, err := parseMessage(msg)
		if err != nil {
			// Soft failure: accept the delivery, skip the message.
			n.logger.Warn("skipping message", "message_id", msg.ID, "type", msg.Type, "error", err)
			continue
		}

		name, known := n.directory.Get(msg.From)
		if !known {
			// Out-of-order profile/message delivery; not worth crashing over.
			n.logger.Warn("skipping message from unknown sender", "message_id", msg.ID, "sender", msg.From)
			continue
		}

		sender := chat.Contact{ChannelID: msg.From, DisplayName: name}
		conversation := n.registry.Lookup([]chat.Contact{bot, sender})
		update := chat.Update{
			Sender:       sender,
			Conversation: conversation,
			Message:      message,
			Timestamp:    parseTimestamp(msg.Timestamp),
		}
		conversation.Append(update)
		updates = append(updates, update)
	}
	return updates, nil
}

func parseMessage(msg InboundMessage) (chat.Message, error) {
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return nil, fmt.Errorf("%w: text message without body", ErrUnsupportedMessage)
		}
		return chat.TextMessage{Text: msg.Text.Body}, nil
	case "interactive":
		if msg.Interactive == nil || msg.Interactive.Type != "list_reply" || msg.Interactive.ListReply == nil {
			return nil, fmt.Errorf("%w: interactive message without list reply", ErrUnsupportedMessage)
		}
		return chat.InteractiveListReplyMessage{
			RowID:    msg.Interactive.ListReply.ID,
			RowTitle: msg.Interactive.ListReply.Title,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMessage, msg.Type)
	}
}

func parseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		secs = 0
	}
	return time.Unix(secs, 0).UTC()
}

// HandleVerification answers the Meta webhook subscription handshake:
// echo hub.challenge when the verify token matches, 403 otherwise.
func HandleVerification(w http.ResponseWriter, r *http.Request, expectedToken string) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == expectedToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// VerificationChallenge is the transport-agnostic form of the handshake,
// usable from Lambda query parameters.
func VerificationChallenge(params map[string]string, expectedToken string) (string, bool) {
	if params["hub.mode"] == "subscribe" && params["hub.verify_token"] == expectedToken {
		return params["hub.challenge"], true
	}
	return "", false
}
