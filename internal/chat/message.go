package chat

// MessageKind discriminates the closed set of message variants. Channel
// adapters dispatch on it exhaustively; adding a new kind means touching
// every adapter switch.
type MessageKind string

const (
	KindText                 MessageKind = "text"
	KindImage                MessageKind = "image"
	KindLocation             MessageKind = "location"
	KindInteractiveList      MessageKind = "interactive_list"
	KindInteractiveListReply MessageKind = "interactive_list_reply"
)

// Message is the tagged union of everything that can travel through a
// conversation, inbound or outbound.
type Message interface {
	Kind() MessageKind
}

// TextMessage is a plain text message.
type TextMessage struct {
	Text         string
	PreviewLinks bool
}

func (TextMessage) Kind() MessageKind { return KindText }

// MediaMessage carries binary content. It is not transmittable until the
// channel adapter has uploaded the bytes and populated MediaID.
type MediaMessage struct {
	Data    []byte
	Name    string
	MIME    string
	MediaID string
}

// Uploaded reports whether the media handle has been populated.
func (m MediaMessage) Uploaded() bool { return m.MediaID != "" }

// ImageMessage is a media message rendered as a photo with a caption.
type ImageMessage struct {
	MediaMessage
	Caption string
}

func (ImageMessage) Kind() MessageKind { return KindImage }

// LocationMessage points at a place on the map.
type LocationMessage struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

func (LocationMessage) Kind() MessageKind { return KindLocation }

// ListRow is one selectable row of an interactive list.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under an optional title.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// InteractiveListMessage presents a set of selectable rows. Platforms
// without native list support render it as their closest equivalent
// (inline keyboards on bot-style platforms).
type InteractiveListMessage struct {
	Header      string
	Body        string
	Footer      string
	ButtonLabel string
	Sections    []ListSection
}

func (InteractiveListMessage) Kind() MessageKind { return KindInteractiveList }

// InteractiveListReplyMessage is the user's selection from a previously
// sent interactive list.
type InteractiveListReplyMessage struct {
	RowID    string
	RowTitle string
}

func (InteractiveListReplyMessage) Kind() MessageKind { return KindInteractiveListReply }
