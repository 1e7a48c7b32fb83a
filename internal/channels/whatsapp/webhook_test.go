package whatsapp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

func newTestNormalizer() (*Normalizer, *chat.MemoryDirectory, *chat.Registry) {
	dir := chat.NewMemoryDirectory()
	reg := chat.NewRegistry()
	return NewNormalizer(dir, reg, logging.Default()), dir, reg
}

func samplePayload() []byte {
	return []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "329941153545846",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "15555555555", "phone_number_id": "333333333333333"},
					"contacts": [{"profile": {"name": "Joseba Echevarría"}, "wa_id": "34611111111"}],
					"messages": [
						{"from": "34611111111", "id": "wamid.1", "timestamp": "1722857807", "text": {"body": "Hello!"}, "type": "text"},
						{"from": "34611111111", "id": "wamid.2", "timestamp": "1722857808", "text": {"body": "World!"}, "type": "text"}
					]
				}
			}]
		}, {
			"id": "329941153545847",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "15555555555", "phone_number_id": "333333333333333"},
					"contacts": [{"profile": {"name": "Joseba García"}, "wa_id": "34611111111"}],
					"messages": [
						{"from": "34611111111", "id": "wamid.3", "timestamp": "1722857809", "text": {"body": "Hola"}, "type": "text"}
					]
				}
			}]
		}]
	}`)
}

func TestParseSamplePayload(t *testing.T) {
	n, dir, reg := newTestNormalizer()

	updates, err := n.Parse(samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}

	// Delivery order is preserved.
	texts := []string{"Hello!", "World!", "Hola"}
	for i, want := range texts {
		text, ok := updates[i].Message.(chat.TextMessage)
		if !ok || text.Text != want {
			t.Errorf("update %d: expected text %q, got %#v", i, want, updates[i].Message)
		}
	}

	if updates[0].Timestamp != time.Unix(1722857807, 0).UTC() {
		t.Errorf("unexpected timestamp %v", updates[0].Timestamp)
	}

	// All three share one conversation (same participant set).
	if reg.Len() != 1 {
		t.Errorf("expected a single conversation, got %d", reg.Len())
	}
	if updates[0].Conversation != updates[2].Conversation {
		t.Error("updates from the same pair must share the conversation")
	}

	// The second entry's profile block overwrote the name.
	name, _ := dir.Get("34611111111")
	if name != "Joseba García" {
		t.Errorf("expected last observed name to win, got %q", name)
	}

	// Recipients derive as conversation minus sender.
	recipients := updates[0].Recipients()
	if len(recipients) != 1 || recipients[0].ChannelID != "333333333333333" {
		t.Errorf("expected the bot as sole recipient, got %v", recipients)
	}
}

func TestParseIdempotent(t *testing.T) {
	n, _, _ := newTestNormalizer()

	first, err := n.Parse(samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := n.Parse(samplePayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("expected equal update counts, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Message != second[i].Message {
			t.Errorf("update %d differs between parses", i)
		}
		if first[i].Conversation != second[i].Conversation {
			t.Errorf("update %d resolved to a different conversation", i)
		}
	}
}

func TestParseMalformedPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown object", `{"object": "instagram", "entry": []}`},
		{"missing entry", `{"object": "whatsapp_business_account"}`},
		{"missing changes", `{"object": "whatsapp_business_account", "entry": [{"id": "1"}]}`},
		{"wrong field", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "statuses", "value": {}}]}]}`},
		{"wrong product", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {"messaging_product": "sms"}}]}]}`},
		{"missing metadata", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {"messaging_product": "whatsapp"}}]}]}`},
		{"missing contacts", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {"messaging_product": "whatsapp", "metadata": {"display_phone_number": "1", "phone_number_id": "2"}, "messages": []}}]}]}`},
		{"missing messages", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {"messaging_product": "whatsapp", "metadata": {"display_phone_number": "1", "phone_number_id": "2"}, "contacts": [{"wa_id": "3", "profile": {"name": "A"}}]}}]}]}`},
		{"not json", `{{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, _, _ := newTestNormalizer()
			_, err := n.Parse([]byte(tc.body))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestParseStatusOnlyDeliverySkipped(t *testing.T) {
	n, _, _ := newTestNormalizer()

	body := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {
		"messaging_product": "whatsapp",
		"metadata": {"display_phone_number": "1", "phone_number_id": "2"},
		"statuses": [{"id": "wamid.1", "status": "read"}]
	}}]}]}`

	updates, err := n.Parse([]byte(body))
	if err != nil {
		t.Fatalf("status-only deliveries must not error: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestParseUnsupportedMessageSkipped(t *testing.T) {
	n, _, _ := newTestNormalizer()

	body := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {
		"messaging_product": "whatsapp",
		"metadata": {"display_phone_number": "1", "phone_number_id": "2"},
		"contacts": [{"wa_id": "34611111111", "profile": {"name": "Joseba"}}],
		"messages": [
			{"from": "34611111111", "id": "wamid.1", "timestamp": "1722857807", "type": "audio"},
			{"from": "34611111111", "id": "wamid.2", "timestamp": "1722857808", "text": {"body": "still here"}, "type": "text"}
		]
	}}]}]}`

	updates, err := n.Parse([]byte(body))
	if err != nil {
		t.Fatalf("unsupported types are soft failures: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected the text message to survive, got %d updates", len(updates))
	}
}

func TestParseUnknownSenderSkipped(t *testing.T) {
	n, _, _ := newTestNormalizer()

	body := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {
		"messaging_product": "whatsapp",
		"metadata": {"display_phone_number": "1", "phone_number_id": "2"},
		"contacts": [{"wa_id": "34611111111", "profile": {"name": "Joseba"}}],
		"messages": [
			{"from": "34699999999", "id": "wamid.1", "timestamp": "1722857807", "text": {"body": "who dis"}, "type": "text"}
		]
	}}]}]}`

	updates, err := n.Parse([]byte(body))
	if err != nil {
		t.Fatalf("unknown senders are skipped, not errors: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}

func TestParseListReply(t *testing.T) {
	n, _, _ := newTestNormalizer()

	body := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"field": "messages", "value": {
		"messaging_product": "whatsapp",
		"metadata": {"display_phone_number": "1", "phone_number_id": "2"},
		"contacts": [{"wa_id": "34611111111", "profile": {"name": "Joseba"}}],
		"messages": [{
			"from": "34611111111", "id": "wamid.1", "timestamp": "1722857807", "type": "interactive",
			"interactive": {"type": "list_reply", "list_reply": {"id": "2025-03-10 10:00", "title": "10:00"}}
		}]
	}}]}]}`

	updates, err := n.Parse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	reply, ok := updates[0].Message.(chat.InteractiveListReplyMessage)
	if !ok {
		t.Fatalf("expected list reply, got %#v", updates[0].Message)
	}
	if reply.RowID != "2025-03-10 10:00" {
		t.Errorf("unexpected row id %q", reply.RowID)
	}
}

func TestVerificationChallenge(t *testing.T) {
	params := map[string]string{
		"hub.mode":         "subscribe",
		"hub.verify_token": "sesame",
		"hub.challenge":    "1158201444",
	}

	challenge, ok := VerificationChallenge(params, "sesame")
	if !ok || challenge != "1158201444" {
		t.Fatalf("expected challenge echo, got %q ok=%v", challenge, ok)
	}

	if _, ok := VerificationChallenge(params, "wrong"); ok {
		t.Fatal("token mismatch must not verify")
	}

	if _, ok := VerificationChallenge(map[string]string{"hub.mode": "unsubscribe", "hub.verify_token": "sesame"}, "sesame"); ok {
		t.Fatal("non-subscribe mode must not verify")
	}
}

func ExampleNormalizer_Parse() {
	n := NewNormalizer(chat.NewMemoryDirectory(), chat.NewRegistry(), logging.Default())
	updates, _ := n.Parse(samplePayload())
	fmt.Println(len(updates))
	// Output: 3
}
