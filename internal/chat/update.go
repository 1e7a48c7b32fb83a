package chat

import "time"

// Update is one normalized inbound event: a message attributed to a sender
// within a conversation.
type Update struct {
	Sender       Contact
	Conversation *Conversation
	Message      Message
	Timestamp    time.Time
}

// Recipients derives the update's audience: everyone in the conversation
// except the sender.
func (u Update) Recipients() []Contact {
	if u.Conversation == nil {
		return nil
	}
	return u.Conversation.Recipients(u.Sender)
}
