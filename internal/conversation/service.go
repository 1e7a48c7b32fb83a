// Package conversation turns inbound chat updates into assistant-driven
// replies. It owns the greeting flow for new conversations, the bounded
// retry loop around the generative backend, and the short-circuit that
// renders spa availability as an interactive slot picker.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/costatartessos/hotel-assistant/internal/assistant"
	"github.com/costatartessos/hotel-assistant/internal/chat"
	"github.com/costatartessos/hotel-assistant/internal/guests"
	"github.com/costatartessos/hotel-assistant/internal/observability/metrics"
	"github.com/costatartessos/hotel-assistant/internal/reservations"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// maxAttempts bounds the retry loop around the generative backend. An
// empty completion or a failed invocation burns one attempt.
const maxAttempts = 2

const (
	noReservationsText = "Thanks for getting in touch with me, %s. I cannot find any reservations for you; you can book a room in our website."

	thinkingText = "Let me think..."

	fallbackApologyText = "I'm sorry, I cannot find that information. You can find out more about this in the hotel reception."

	noSlotsText = "I'm sorry, there are no spa slots available around %s. Please try a different date."

	slotTakenText = "I'm sorry, that time slot has just been taken. Please pick a different one."

	slotInvalidText = "I'm sorry, that time slot is no longer offered. Please ask me again for the spa availability."

	bookingConfirmedText = "Your spa session is confirmed for %s. Enjoy!"

	roomKeyText = "Your room is number %d, you can use this digital key in your smartphone or smartwatch to enter your room.\n" +
		"You can also get a physical key in the hotel reception.\n" +
		"Since you are a distinguished member of our fidelity program, our Director of Guest Experience will " +
		"meet you in the hotel lobby and solve any doubts you might have."
)

// Sender delivers outbound messages on whatever channel the conversation
// lives on. Channel adapters implement it.
type Sender interface {
	Send(ctx context.Context, msg chat.Message, to chat.Contact) error
}

// StartRequest opens a fresh conversation with a contact.
type StartRequest struct {
	ContactID   string
	DisplayName string
}

// Service orchestrates one reply per inbound update. Turns within a
// conversation are serialized through a per-session lock so concurrent
// webhook deliveries cannot interleave partial replies.
type Service struct {
	assistant    assistant.Client
	reservations *reservations.Service
	guests       *guests.Directory
	sender       Sender
	metrics      *metrics.ChatMetrics
	logger       *logging.Logger
	now          func() time.Time

	locks sync.Map // session key -> *sync.Mutex
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithMetrics attaches turn/booking counters.
func WithMetrics(m *metrics.ChatMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires the orchestrator. All dependencies except the logger
// are required.
func NewService(backend assistant.Client, resv *reservations.Service, directory *guests.Directory, sender Sender, logger *logging.Logger, opts ...ServiceOption) *Service {
	if backend == nil {
		panic("conversation: assistant client cannot be nil")
	}
	if resv == nil {
		panic("conversation: reservations service cannot be nil")
	}
	if directory == nil {
		panic("conversation: guest directory cannot be nil")
	}
	if sender == nil {
		panic("conversation: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		assistant:    backend,
		reservations: resv,
		guests:       directory,
		sender:       sender,
		logger:       logger.Component("conversation"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartConversation introduces the assistant and presents the contact's
// reservation details. Any previous backend session is invalidated first
// so the new conversation starts from a clean state.
func (s *Service) StartConversation(ctx context.Context, req StartRequest) error {
	to := chat.Contact{ChannelID: req.ContactID, DisplayName: req.DisplayName}

	if err := s.assistant.EndSession(ctx, req.ContactID); err != nil {
		// A stale session only degrades the first reply; keep greeting.
		s.logger.Warn("session invalidation failed", "contact", req.ContactID, "error", err)
	}

	userReservations := s.guests.ReservationsByChatID(req.ContactID, req.DisplayName)
	if len(userReservations) == 0 {
		return s.sendText(ctx, to, fmt.Sprintf(noReservationsText, req.DisplayName))
	}

	next := userReservations[0]
	for _, r := range userReservations[1:] {
		if r.StartDate.Before(next.StartDate) {
			next = r
		}
	}

	greeting := s.greetingText(next, req.DisplayName)
	if len(next.Hotel.Poster) > 0 {
		poster := chat.ImageMessage{
			MediaMessage: chat.MediaMessage{Data: next.Hotel.Poster, Name: "poster.jpg", MIME: "image/jpeg"},
			Caption:      greeting,
		}
		if err := s.sender.Send(ctx, poster, to); err != nil {
			return fmt.Errorf("conversation: greeting: %w", err)
		}
	} else if err := s.sendText(ctx, to, greeting); err != nil {
		return err
	}

	location := chat.LocationMessage{
		Latitude:  next.Hotel.Location.Latitude,
		Longitude: next.Hotel.Location.Longitude,
		Name:      next.Hotel.Name + " location",
		Address:   next.Hotel.Location.Address,
	}
	if err := s.sender.Send(ctx, location, to); err != nil {
		return fmt.Errorf("conversation: location: %w", err)
	}

	if next.HasLevel(guests.Gold) {
		key := chat.ImageMessage{
			MediaMessage: chat.MediaMessage{
				Data: next.DigitalRoomKey(),
				Name: fmt.Sprintf("Room %d.png", next.RoomNumber),
				MIME: "image/png",
			},
			Caption: fmt.Sprintf(roomKeyText, next.RoomNumber),
		}
		if err := s.sender.Send(ctx, key, to); err != nil {
			return fmt.Errorf("conversation: room key: %w", err)
		}
	}
	return nil
}

func (s *Service) greetingText(r guests.Reservation, name string) string {
	var b strings.Builder

	today := s.now().UTC().Truncate(24 * time.Hour)
	if r.StartDate.Equal(today) {
		fmt.Fprintf(&b, "*Your stay in %s starts today*\n\n", r.Hotel.Name)
	} else {
		fmt.Fprintf(&b, "*We'll be expecting you in %s on %s*\n\n", r.Hotel.Name, r.StartDate.Format("2006-01-02"))
	}

	now := s.now()
	var adults, minors []string
	for _, g := range r.Guests {
		if g.IsMinor(now) {
			minors = append(minors, g.Name)
		} else {
			adults = append(adults, g.Name)
		}
	}

	fmt.Fprintf(&b, "Here are the details of your reservation, %s:\n", name)
	fmt.Fprintf(&b, "  • %d nights\n", r.Nights())
	fmt.Fprintf(&b, "  • %d %s (%s)\n", len(adults), plural("adult", len(adults)), strings.Join(adults, ", "))
	if len(minors) > 0 {
		fmt.Fprintf(&b, "  • %d %s (%s)\n", len(minors), plural("minor", len(minors)), strings.Join(minors, ", "))
	}
	return b.String()
}

// HandleUpdate produces the reply for one inbound update.
func (s *Service) HandleUpdate(ctx context.Context, update *chat.Update) error {
	if update == nil || update.Conversation == nil {
		return errors.New("conversation: update without conversation")
	}

	mu := s.lockFor(update.Conversation.Key)
	mu.Lock()
	defer mu.Unlock()

	switch m := update.Message.(type) {
	case chat.InteractiveListReplyMessage:
		return s.handleBooking(ctx, update.Sender, m)
	case chat.TextMessage:
		return s.handleText(ctx, update.Sender, m.Text)
	default:
		s.logger.Debug("ignoring update", "kind", string(update.Message.Kind()), "sender", update.Sender.ChannelID)
		return nil
	}
}

func (s *Service) lockFor(key string) *sync.Mutex {
	actual, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// handleBooking books the slot the guest picked from the interactive list.
// On failure the guest is told what happened before the error is returned.
func (s *Service) handleBooking(ctx context.Context, sender chat.Contact, reply chat.InteractiveListReplyMessage) error {
	err := s.reservations.Book(ctx, reply.RowID, sender.ChannelID)
	switch {
	case err == nil:
		s.metrics.ObserveBooking("confirmed")
		return s.sendText(ctx, sender, fmt.Sprintf(bookingConfirmedText, reply.RowID))

	case errors.Is(err, reservations.ErrSlotAlreadyBooked):
		s.metrics.ObserveBooking("conflict")
		if sendErr := s.sendText(ctx, sender, slotTakenText); sendErr != nil {
			s.logger.Error("conflict notice failed", "sender", sender.ChannelID, "error", sendErr)
		}
		return err

	case errors.Is(err, reservations.ErrInvalidSlot):
		s.metrics.ObserveBooking("invalid")
		if sendErr := s.sendText(ctx, sender, slotInvalidText); sendErr != nil {
			s.logger.Error("invalid-slot notice failed", "sender", sender.ChannelID, "error", sendErr)
		}
		return err

	default:
		s.metrics.ObserveBooking("error")
		return fmt.Errorf("conversation: booking: %w", err)
	}
}

// handleText runs the bounded assistant loop: up to maxAttempts
// invocations, retrying on empty completions and invocation failures, then
// a fixed apology.
func (s *Service) handleText(ctx context.Context, sender chat.Contact, text string) error {
	attrs := s.guests.SessionAttributes(sender.ChannelID, sender.DisplayName)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, handled, err := s.assistantTurn(ctx, sender, text, attrs)
		if handled {
			if err != nil {
				return err
			}
			s.metrics.ObserveTurn("availability")
			return nil
		}
		if err != nil {
			s.logger.Warn("assistant attempt failed", "attempt", attempt, "sender", sender.ChannelID, "error", err)
			if attempt < maxAttempts {
				if sendErr := s.sendText(ctx, sender, thinkingText); sendErr != nil {
					s.logger.Error("interim notice failed", "sender", sender.ChannelID, "error", sendErr)
				}
			}
			continue
		}
		s.metrics.ObserveTurn("replied")
		return s.sendText(ctx, sender, reply)
	}

	s.metrics.ObserveTurn("exhausted")
	return s.sendText(ctx, sender, fallbackApologyText)
}

// assistantTurn performs one invocation and consumes its fragment stream.
// handled reports that a structured fragment short-circuited the turn and
// the reply has already been sent.
func (s *Service) assistantTurn(ctx context.Context, sender chat.Contact, text string, attrs map[string]string) (reply string, handled bool, err error) {
	fragments, err := s.assistant.Invoke(ctx, sender.ChannelID, text, attrs)
	if err != nil {
		return "", false, err
	}

	var completion strings.Builder
	for frag := range fragments {
		switch {
		case frag.Err != nil:
			return "", false, frag.Err

		case frag.Availability != nil:
			// Stop consuming; whatever the model says after the
			// availability document is not for the guest.
			return "", true, s.sendAvailability(ctx, sender, *frag.Availability)

		case frag.Unrecognized != nil:
			s.logger.Warn("dropping unrecognized fragment", "sender", sender.ChannelID, "fragment", string(frag.Unrecognized))

		default:
			completion.WriteString(frag.Text)
		}
	}

	if completion.Len() == 0 {
		return "", false, assistant.ErrEmptyCompletion
	}
	return completion.String(), false, nil
}

func (s *Service) sendAvailability(ctx context.Context, to chat.Contact, avail assistant.SpaAvailability) error {
	if len(avail.AvailableSlots) == 0 {
		return s.sendText(ctx, to, fmt.Sprintf(noSlotsText, avail.Date))
	}

	rows := make([]chat.ListRow, 0, len(avail.AvailableSlots))
	for _, slot := range avail.AvailableSlots {
		rows = append(rows, chat.ListRow{ID: slot, Title: slot})
	}
	list := chat.InteractiveListMessage{
		Body:        fmt.Sprintf("These are the available spa slots starting on %s. Pick one and I will book it for you.", avail.Date),
		ButtonLabel: "Available slots",
		Sections:    []chat.ListSection{{Title: "Spa sessions", Rows: rows}},
	}
	if err := s.sender.Send(ctx, list, to); err != nil {
		return fmt.Errorf("conversation: availability list: %w", err)
	}
	return nil
}

func (s *Service) sendText(ctx context.Context, to chat.Contact, text string) error {
	if err := s.sender.Send(ctx, chat.TextMessage{Text: text}, to); err != nil {
		return fmt.Errorf("conversation: send: %w", err)
	}
	return nil
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
