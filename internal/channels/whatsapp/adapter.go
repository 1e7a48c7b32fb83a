package whatsapp

import (
	"context"
	"fmt"

	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Adapter renders the message union onto the Cloud API. The switch over
// message kinds is exhaustive; a new variant that reaches the default
// branch is a programming error worth surfacing.
type Adapter struct {
	client *Client
	logger *logging.Logger
}

// NewAdapter creates the WhatsApp channel adapter.
func NewAdapter(client *Client, logger *logging.Logger) *Adapter {
	if client == nil {
		panic("whatsapp: client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{client: client, logger: logger.Component("whatsapp")}
}

// Send delivers one outbound message to the given contact.
func (a *Adapter) Send(ctx context.Context, msg chat.Message, to chat.Contact) error {
	switch m := msg.(type) {
	case chat.TextMessage:
		_, err := a.client.SendText(ctx, to.ChannelID, m.Text, m.PreviewLinks)
		return err

	case chat.ImageMessage:
		mediaID := m.MediaID
		if mediaID == "" {
			uploaded, err := a.client.UploadMedia(ctx, m.Name, m.MIME, m.Data)
			if err != nil {
				a.logger.Error("media upload failed", "recipient", to.ChannelID, "name", m.Name, "error", err)
				return err
			}
			mediaID = uploaded
		}
		_, err := a.client.SendImage(ctx, to.ChannelID, mediaID, m.Caption)
		return err

	case chat.LocationMessage:
		_, err := a.client.SendLocation(ctx, to.ChannelID, SendLocation{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Name:      m.Name,
			Address:   m.Address,
		})
		return err

	case chat.InteractiveListMessage:
		_, err := a.client.SendInteractiveList(ctx, to.ChannelID, renderList(m))
		return err

	case chat.InteractiveListReplyMessage:
		return fmt.Errorf("whatsapp: list replies are inbound-only")

	default:
		return fmt.Errorf("whatsapp: cannot send message kind %q", msg.Kind())
	}
}

func renderList(m chat.InteractiveListMessage) SendInteractive {
	out := SendInteractive{
		Body:   InteractiveText{Text: m.Body},
		Action: InteractiveAction{Button: m.ButtonLabel},
	}
	if m.Header != "" {
		out.Header = &InteractiveHeader{Type: "text", Text: m.Header}
	}
	if m.Footer != "" {
		out.Footer = &InteractiveText{Text: m.Footer}
	}
	for _, section := range m.Sections {
		rows := make([]SendRow, 0, len(section.Rows))
		for _, row := range section.Rows {
			rows = append(rows, SendRow{ID: row.ID, Title: row.Title, Description: row.Description})
		}
		out.Action.Sections = append(out.Action.Sections, SendSection{Title: section.Title, Rows: rows})
	}
	return out
}
