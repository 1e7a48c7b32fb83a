package chat

import (
	"sync"
	"testing"
	"time"
)

func TestConversationKeyOrderIndependent(t *testing.T) {
	a := Contact{ChannelID: "34611111111", DisplayName: "Joseba"}
	b := Contact{ChannelID: "15555555555", DisplayName: "Hotel Bot"}

	if ConversationKey([]Contact{a, b}) != ConversationKey([]Contact{b, a}) {
		t.Fatal("participant order must not change the conversation key")
	}
	if ConversationKey([]Contact{a, b}) != "15555555555|34611111111" {
		t.Fatalf("unexpected key %q", ConversationKey([]Contact{a, b}))
	}
}

func TestConversationKeyDeduplicates(t *testing.T) {
	a := Contact{ChannelID: "1"}
	key := ConversationKey([]Contact{a, a, {ChannelID: "2"}})
	if key != "1|2" {
		t.Fatalf("expected deduplicated key, got %q", key)
	}
}

func TestRegistryLookupDeduplicatesBySet(t *testing.T) {
	reg := NewRegistry()
	a := Contact{ChannelID: "bot"}
	b := Contact{ChannelID: "guest", DisplayName: "María"}

	first := reg.Lookup([]Contact{a, b})
	second := reg.Lookup([]Contact{b, a})

	if first != second {
		t.Fatal("same participant set must map to the same conversation")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 conversation, got %d", reg.Len())
	}
}

func TestRegistryLookupRefreshesDisplayName(t *testing.T) {
	reg := NewRegistry()
	bot := Contact{ChannelID: "bot"}

	reg.Lookup([]Contact{bot, {ChannelID: "guest", DisplayName: "Joseba Echevarría"}})
	conv := reg.Lookup([]Contact{bot, {ChannelID: "guest", DisplayName: "Joseba García"}})

	var got string
	for _, p := range conv.Participants {
		if p.ChannelID == "guest" {
			got = p.DisplayName
		}
	}
	if got != "Joseba García" {
		t.Fatalf("expected display name to be overwritten, got %q", got)
	}
}

func TestRecipientsExcludeSender(t *testing.T) {
	bot := Contact{ChannelID: "bot"}
	guest := Contact{ChannelID: "guest"}
	conv := NewRegistry().Lookup([]Contact{bot, guest})

	u := Update{Sender: guest, Conversation: conv, Message: TextMessage{Text: "hi"}, Timestamp: time.Now()}
	recipients := u.Recipients()
	if len(recipients) != 1 || recipients[0].ChannelID != "bot" {
		t.Fatalf("expected only the bot as recipient, got %v", recipients)
	}
}

func TestConversationAppendConcurrent(t *testing.T) {
	conv := NewRegistry().Lookup([]Contact{{ChannelID: "a"}, {ChannelID: "b"}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv.Append(Update{Message: TextMessage{Text: "x"}})
		}()
	}
	wg.Wait()

	if got := len(conv.Log()); got != 50 {
		t.Fatalf("expected 50 log entries, got %d", got)
	}
}

func TestMemoryDirectoryLastWriteWins(t *testing.T) {
	dir := NewMemoryDirectory()

	if _, ok := dir.Get("34611111111"); ok {
		t.Fatal("empty directory should miss")
	}
	dir.Put("34611111111", "Joseba Echevarría")
	dir.Put("34611111111", "Joseba García")

	name, ok := dir.Get("34611111111")
	if !ok || name != "Joseba García" {
		t.Fatalf("expected last write to win, got %q ok=%v", name, ok)
	}
}
