package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// botAPI is the slice of *tgbotapi.BotAPI the adapter uses; kept small so
// tests can hand-mock it.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Adapter renders the message union onto the Bot API. Telegram has no
// native list messages, so InteractiveListMessage becomes an inline
// keyboard with one button per row and the row ID as callback data.
type Adapter struct {
	bot    botAPI
	logger *logging.Logger
}

// NewAdapter creates the Telegram channel adapter.
func NewAdapter(bot botAPI, logger *logging.Logger) *Adapter {
	if bot == nil {
		panic("telegram: bot cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{bot: bot, logger: logger.Component("telegram")}
}

// Send delivers one outbound message to the given contact. The Bot API
// client does not take a context; ctx is accepted for interface symmetry
// with the other channel adapters.
func (a *Adapter) Send(ctx context.Context, msg chat.Message, to chat.Contact) error {
	chatID, err := strconv.ParseInt(to.ChannelID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", to.ChannelID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch m := msg.(type) {
	case chat.TextMessage:
		_, err := a.bot.Send(tgbotapi.NewMessage(chatID, m.Text))
		return err

	case chat.ImageMessage:
		var file tgbotapi.RequestFileData
		switch {
		case m.Uploaded():
			file = tgbotapi.FileID(m.MediaID)
		case len(m.Data) > 0:
			file = tgbotapi.FileBytes{Name: m.Name, Bytes: m.Data}
		default:
			return fmt.Errorf("telegram: image message carries no media")
		}
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = m.Caption
		_, err := a.bot.Send(photo)
		return err

	case chat.LocationMessage:
		if m.Name != "" {
			_, err := a.bot.Send(tgbotapi.NewVenue(chatID, m.Name, m.Address, m.Latitude, m.Longitude))
			return err
		}
		_, err := a.bot.Send(tgbotapi.NewLocation(chatID, m.Latitude, m.Longitude))
		return err

	case chat.InteractiveListMessage:
		reply := tgbotapi.NewMessage(chatID, listBody(m))
		reply.ReplyMarkup = listKeyboard(m)
		_, err := a.bot.Send(reply)
		return err

	case chat.InteractiveListReplyMessage:
		return fmt.Errorf("telegram: list replies are inbound-only")

	default:
		return fmt.Errorf("telegram: cannot send message kind %q", msg.Kind())
	}
}

// Typing signals the "typing..." chat action while a reply is produced.
// Failures are logged and swallowed; the indicator is cosmetic.
func (a *Adapter) Typing(ctx context.Context, to chat.Contact) {
	chatID, err := strconv.ParseInt(to.ChannelID, 10, 64)
	if err != nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := a.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		a.logger.Warn("chat action failed", "chat_id", to.ChannelID, "error", err)
	}
}

// AcknowledgeCallback stops the client-side spinner after a button press.
func (a *Adapter) AcknowledgeCallback(ctx context.Context, callbackID string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := a.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		a.logger.Warn("callback ack failed", "callback_id", callbackID, "error", err)
	}
}

func listBody(m chat.InteractiveListMessage) string {
	body := m.Body
	if m.Header != "" {
		body = m.Header + "\n\n" + body
	}
	if m.Footer != "" {
		body = body + "\n\n" + m.Footer
	}
	return body
}

func listKeyboard(m chat.InteractiveListMessage) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, section := range m.Sections {
		for _, row := range section.Rows {
			button := tgbotapi.NewInlineKeyboardButtonData(row.Title, row.ID)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
