package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/costatartessos/hotel-assistant/internal/chat"
)

var testBot = chat.Contact{ChannelID: "bot:hotel", DisplayName: "Hotel Assistant"}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(testBot, chat.NewMemoryDirectory(), chat.NewRegistry(), nil)
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 7,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: chatID, FirstName: "Joseba", LastName: "Echevarría"},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
			Date: 1741600000,
		},
	}
}

func TestParseTextUpdate(t *testing.T) {
	n := newTestNormalizer()

	update, ok := n.ParseUpdate(textUpdate(6449557216, "Is the spa open?"))
	if !ok {
		t.Fatal("expected text update to be parsed")
	}
	if update.Sender.ChannelID != "6449557216" || update.Sender.DisplayName != "Joseba Echevarría" {
		t.Errorf("unexpected sender %#v", update.Sender)
	}
	text, ok := update.Message.(chat.TextMessage)
	if !ok || text.Text != "Is the spa open?" {
		t.Errorf("unexpected message %#v", update.Message)
	}
	if update.Timestamp.Unix() != 1741600000 {
		t.Errorf("unexpected timestamp %v", update.Timestamp)
	}
	if got := update.Conversation.Recipients(update.Sender); len(got) != 1 || !got[0].Equal(testBot) {
		t.Errorf("unexpected recipients %#v", got)
	}
}

func TestParseCallbackUpdate(t *testing.T) {
	n := newTestNormalizer()

	update, ok := n.ParseUpdate(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: 6449557216, FirstName: "Joseba"},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 6449557216}},
			Data:    "2025-03-10 10:00",
		},
	})
	if !ok {
		t.Fatal("expected callback update to be parsed")
	}
	reply, ok := update.Message.(chat.InteractiveListReplyMessage)
	if !ok || reply.RowID != "2025-03-10 10:00" {
		t.Errorf("unexpected message %#v", update.Message)
	}
}

func TestParseSkipsOtherUpdates(t *testing.T) {
	n := newTestNormalizer()

	cases := []tgbotapi.Update{
		{},
		{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}, // media without text
		{EditedMessage: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "edited"}},
	}
	for i, update := range cases {
		if _, ok := n.ParseUpdate(update); ok {
			t.Errorf("case %d: update should be skipped", i)
		}
	}
}

func TestSameChatSharesConversation(t *testing.T) {
	n := newTestNormalizer()

	first, _ := n.ParseUpdate(textUpdate(6449557216, "hello"))
	second, _ := n.ParseUpdate(textUpdate(6449557216, "again"))
	if first.Conversation != second.Conversation {
		t.Error("updates from the same chat must share one conversation")
	}
	if got := len(first.Conversation.Log()); got != 2 {
		t.Errorf("expected 2 logged updates, got %d", got)
	}
}

func TestIsStartCommand(t *testing.T) {
	start := textUpdate(1, "/start")
	start.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	if !IsStartCommand(start) {
		t.Error("expected /start to be detected")
	}
	if IsStartCommand(textUpdate(1, "start over please")) {
		t.Error("plain text must not be a start command")
	}
	if IsStartCommand(tgbotapi.Update{}) {
		t.Error("empty update must not be a start command")
	}
}

type mockBot struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, m.sendErr
}

func (m *mockBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestAdapterSendText(t *testing.T) {
	bot := &mockBot{}
	adapter := NewAdapter(bot, nil)

	err := adapter.Send(context.Background(), chat.TextMessage{Text: "Welcome"}, chat.Contact{ChannelID: "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.Text != "Welcome" || msg.ChatID != 42 {
		t.Fatalf("unexpected chattable %#v", bot.sent[0])
	}
}

func TestAdapterSendImage(t *testing.T) {
	bot := &mockBot{}
	adapter := NewAdapter(bot, nil)

	msg := chat.ImageMessage{
		MediaMessage: chat.MediaMessage{Data: []byte{1, 2}, Name: "key.png", MIME: "image/png"},
		Caption:      "Your digital room key",
	}
	if err := adapter.Send(context.Background(), msg, chat.Contact{ChannelID: "42"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	photo, ok := bot.sent[0].(tgbotapi.PhotoConfig)
	if !ok || photo.Caption != "Your digital room key" {
		t.Fatalf("unexpected chattable %#v", bot.sent[0])
	}
	if _, ok := photo.File.(tgbotapi.FileBytes); !ok {
		t.Errorf("expected raw bytes upload, got %#v", photo.File)
	}
}

func TestAdapterSendEmptyImageFails(t *testing.T) {
	adapter := NewAdapter(&mockBot{}, nil)
	err := adapter.Send(context.Background(), chat.ImageMessage{}, chat.Contact{ChannelID: "42"})
	if err == nil {
		t.Fatal("expected error for image without media")
	}
}

func TestAdapterSendLocationAsVenue(t *testing.T) {
	bot := &mockBot{}
	adapter := NewAdapter(bot, nil)

	msg := chat.LocationMessage{Latitude: 37.2618, Longitude: -6.9447, Name: "Costa Tartessos", Address: "Av. del Oceano 1"}
	if err := adapter.Send(context.Background(), msg, chat.Contact{ChannelID: "42"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	venue, ok := bot.sent[0].(tgbotapi.VenueConfig)
	if !ok || venue.Title != "Costa Tartessos" || venue.Address != "Av. del Oceano 1" {
		t.Fatalf("unexpected chattable %#v", bot.sent[0])
	}
}

func TestAdapterSendListAsInlineKeyboard(t *testing.T) {
	bot := &mockBot{}
	adapter := NewAdapter(bot, nil)

	msg := chat.InteractiveListMessage{
		Body:        "Available slots for 2025-03-10",
		ButtonLabel: "Choose a slot",
		Sections: []chat.ListSection{{
			Rows: []chat.ListRow{{ID: "2025-03-10 09:00", Title: "09:00"}, {ID: "2025-03-10 10:00", Title: "10:00"}},
		}},
	}
	if err := adapter.Send(context.Background(), msg, chat.Contact{ChannelID: "42"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %#v", bot.sent[0])
	}
	markup, ok := reply.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected one keyboard row per slot, got %#v", reply.ReplyMarkup)
	}
	button := markup.InlineKeyboard[1][0]
	if button.Text != "10:00" || button.CallbackData == nil || *button.CallbackData != "2025-03-10 10:00" {
		t.Errorf("unexpected button %#v", button)
	}
}

func TestAdapterRejectsBadChatID(t *testing.T) {
	adapter := NewAdapter(&mockBot{}, nil)
	err := adapter.Send(context.Background(), chat.TextMessage{Text: "x"}, chat.Contact{ChannelID: "not-a-number"})
	if err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
}

func TestAdapterPropagatesSendError(t *testing.T) {
	wantErr := errors.New("telegram down")
	adapter := NewAdapter(&mockBot{sendErr: wantErr}, nil)
	err := adapter.Send(context.Background(), chat.TextMessage{Text: "x"}, chat.Contact{ChannelID: "42"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected send error to propagate, got %v", err)
	}
}

func TestAdapterTypingAndCallbackAck(t *testing.T) {
	bot := &mockBot{}
	adapter := NewAdapter(bot, nil)

	adapter.Typing(context.Background(), chat.Contact{ChannelID: "42"})
	adapter.AcknowledgeCallback(context.Background(), "cb-1")

	if len(bot.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(bot.requests))
	}
	action, ok := bot.requests[0].(tgbotapi.ChatActionConfig)
	if !ok || action.Action != tgbotapi.ChatTyping {
		t.Errorf("unexpected chat action %#v", bot.requests[0])
	}
	if _, ok := bot.requests[1].(tgbotapi.CallbackConfig); !ok {
		t.Errorf("unexpected callback config %#v", bot.requests[1])
	}
}
