package chat

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Conversation groups the bot contact and one or more counterparties with
// an append-only log of updates. The log only spans the process lifetime;
// old messages cannot be retrieved from the platforms. Key is the identity
// (participant set); ID is a per-process handle useful in logs.
type Conversation struct {
	ID           string
	Key          string
	Participants []Contact

	mu  sync.Mutex
	log []Update
}

// ConversationKey canonicalizes a participant set into a stable map key:
// channel IDs sorted and joined. Two conversations are the same entity iff
// their keys are equal.
func ConversationKey(participants []Contact) string {
	ids := make([]string, 0, len(participants))
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.ChannelID]; ok {
			continue
		}
		seen[p.ChannelID] = struct{}{}
		ids = append(ids, p.ChannelID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// Recipients returns the participants other than the given sender.
func (c *Conversation) Recipients(sender Contact) []Contact {
	out := make([]Contact, 0, len(c.Participants))
	for _, p := range c.Participants {
		if !p.Equal(sender) {
			out = append(out, p)
		}
	}
	return out
}

// Append records an update in the conversation log.
func (c *Conversation) Append(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, u)
}

// Log returns a copy of the recorded updates.
func (c *Conversation) Log() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Update, len(c.log))
	copy(out, c.log)
	return out
}

// Registry deduplicates conversations by participant-set identity,
// lazily creating one the first time a set is observed. Process-local,
// safe to lose and rebuild.
type Registry struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
}

// NewRegistry creates an empty conversation registry.
func NewRegistry() *Registry {
	return &Registry{conversations: make(map[string]*Conversation)}
}

// Lookup returns the conversation for the given participant set, creating
// it on first observation. The participant set of an existing conversation
// never changes; later lookups only refresh display names.
func (r *Registry) Lookup(participants []Contact) *Conversation {
	key := ConversationKey(participants)

	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.conversations[key]; ok {
		for i, existing := range conv.Participants {
			for _, p := range participants {
				if p.Equal(existing) && p.DisplayName != "" {
					conv.Participants[i].DisplayName = p.DisplayName
				}
			}
		}
		return conv
	}

	conv := &Conversation{
		ID:           uuid.NewString(),
		Key:          key,
		Participants: append([]Contact(nil), participants...),
	}
	r.conversations[key] = conv
	return conv
}

// Len returns the number of known conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}
