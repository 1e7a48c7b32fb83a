package chat

import "strings"

// Contact identifies one party on a messaging channel. Identity is the
// platform-assigned channel ID; the display name is mutable metadata and is
// overwritten whenever the platform resends profile information.
type Contact struct {
	ChannelID   string
	DisplayName string
}

// Equal reports whether two contacts are the same identity. Display names
// are ignored.
func (c Contact) Equal(other Contact) bool {
	return c.ChannelID == other.ChannelID
}

// Label returns a human-readable reference for logs and chat text.
func (c Contact) Label() string {
	if strings.TrimSpace(c.DisplayName) == "" {
		return c.ChannelID
	}
	return c.DisplayName
}
