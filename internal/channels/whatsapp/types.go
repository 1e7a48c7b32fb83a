package whatsapp

// Wire types for the WhatsApp Cloud API, inbound webhook side.
// https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks/components

// WebhookPayload is the top-level structure of one webhook delivery.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business-account entry; a shared webhook may carry several.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is one field change inside an entry.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the actual messaging data of a change.
type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         *Metadata        `json:"metadata"`
	Contacts         []ContactProfile `json:"contacts"`
	Messages         []InboundMessage `json:"messages"`
	Statuses         []Status         `json:"statuses"`
}

// Metadata identifies the bot's own number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// ContactProfile is the sender profile block.
type ContactProfile struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile carries the user-visible name.
type Profile struct {
	Name string `json:"name"`
}

// Status is a delivery/read receipt. Receipt-only deliveries are skipped.
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InboundMessage is one message inside a change.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *InboundText        `json:"text,omitempty"`
	Interactive *InboundInteractive `json:"interactive,omitempty"`
}

// InboundText is the body of a text message.
type InboundText struct {
	Body string `json:"body"`
}

// InboundInteractive is the user's interaction with a previously sent
// interactive message.
type InboundInteractive struct {
	Type      string     `json:"type"`
	ListReply *ListReply `json:"list_reply,omitempty"`
}

// ListReply is the chosen row of an interactive list.
type ListReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Outbound types, Cloud API send side.
// https://developers.facebook.com/docs/whatsapp/cloud-api/messages

// SendRequest is the payload posted to /<phone-id>/messages.
type SendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *SendText        `json:"text,omitempty"`
	Image            *SendImage       `json:"image,omitempty"`
	Location         *SendLocation    `json:"location,omitempty"`
	Interactive      *SendInteractive `json:"interactive,omitempty"`
}

// SendText is an outbound text body.
type SendText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// SendImage references uploaded media by handle.
type SendImage struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
}

// SendLocation is an outbound map pin.
type SendLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// SendInteractive is an outbound interactive message.
type SendInteractive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveText    `json:"body"`
	Footer *InteractiveText   `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

// InteractiveHeader is the optional list header.
type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InteractiveText wraps a text field of an interactive message.
type InteractiveText struct {
	Text string `json:"text"`
}

// InteractiveAction holds the list button and sections.
type InteractiveAction struct {
	Button   string        `json:"button"`
	Sections []SendSection `json:"sections"`
}

// SendSection is one section of rows.
type SendSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []SendRow `json:"rows"`
}

// SendRow is one selectable row.
type SendRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SendResponse is the Cloud API reply to a send.
type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *APIError `json:"error,omitempty"`
}

// UploadResponse is the reply to a media upload.
type UploadResponse struct {
	ID    string    `json:"id"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the Graph API error envelope.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}
