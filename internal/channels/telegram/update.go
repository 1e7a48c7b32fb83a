package telegram

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Normalizer maps Bot API updates onto the shared conversation model.
// Unlike the WhatsApp webhook there is no batching: each update carries at
// most one message, so parsing yields at most one chat.Update.
type Normalizer struct {
	bot       chat.Contact
	directory chat.Directory
	registry  *chat.Registry
	logger    *logging.Logger
}

// NewNormalizer creates a normalizer for the given bot identity.
func NewNormalizer(bot chat.Contact, directory chat.Directory, registry *chat.Registry, logger *logging.Logger) *Normalizer {
	if directory == nil {
		panic("telegram: directory cannot be nil")
	}
	if registry == nil {
		panic("telegram: registry cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{bot: bot, directory: directory, registry: registry, logger: logger.Component("telegram")}
}

// ParseUpdate converts one Bot API update. The second return value is false
// when the update carries nothing the assistant handles (edits, channel
// posts, media we do not process); such updates are skipped, not failed.
func (n *Normalizer) ParseUpdate(update tgbotapi.Update) (*chat.Update, bool) {
	switch {
	case update.Message != nil && update.Message.Text != "":
		msg := update.Message
		sender := n.register(msg.From, msg.Chat)
		return n.wrap(sender, chat.TextMessage{Text: msg.Text}, msg.Time()), true

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		cb := update.CallbackQuery
		sender := n.register(cb.From, cb.Message.Chat)
		reply := chat.InteractiveListReplyMessage{RowID: cb.Data, RowTitle: cb.Data}
		return n.wrap(sender, reply, time.Now().UTC()), true

	default:
		n.logger.Debug("skipping unsupported update", "update_id", update.UpdateID)
		return nil, false
	}
}

// IsStartCommand reports whether the update is the /start command that
// opens a fresh conversation with the bot.
func IsStartCommand(update tgbotapi.Update) bool {
	return update.Message != nil && update.Message.IsCommand() && update.Message.Command() == "start"
}

func (n *Normalizer) register(from *tgbotapi.User, conv *tgbotapi.Chat) chat.Contact {
	id := strconv.FormatInt(conv.ID, 10)
	name := displayName(from)
	if name != "" {
		n.directory.Put(id, name)
	} else if existing, ok := n.directory.Get(id); ok {
		name = existing
	}
	return chat.Contact{ChannelID: id, DisplayName: name}
}

func (n *Normalizer) wrap(sender chat.Contact, msg chat.Message, ts time.Time) *chat.Update {
	conversation := n.registry.Lookup([]chat.Contact{n.bot, sender})
	update := &chat.Update{
		Sender:       sender,
		Conversation: conversation,
		Message:      msg,
		Timestamp:    ts,
	}
	conversation.Append(*update)
	return update
}

func displayName(from *tgbotapi.User) string {
	if from == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))
	if name == "" {
		name = from.UserName
	}
	return name
}
