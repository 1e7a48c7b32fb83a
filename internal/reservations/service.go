package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

const (
	// Availability below this count triggers lookahead to the next day.
	rolloverThreshold = 3

	// DefaultMaxLookahead bounds the rollover recursion.
	DefaultMaxLookahead = 14
)

// Service computes availability and performs conflict-free bookings over a
// day-keyed slot store.
type Service struct {
	store        Store
	logger       *logging.Logger
	leadTime     time.Duration
	maxLookahead int
	now          func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithLeadTime overrides the minimum distance between now and a bookable
// slot start.
func WithLeadTime(lead time.Duration) ServiceOption {
	return func(s *Service) {
		if lead >= 0 {
			s.leadTime = lead
		}
	}
}

// WithMaxLookahead overrides how many days the rollover may extend past the
// requested date.
func WithMaxLookahead(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.maxLookahead = days
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the slot engine around a store.
func NewService(store Store, logger *logging.Logger, opts ...ServiceOption) *Service {
	if store == nil {
		panic("reservations: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Service{
		store:        store,
		logger:       logger,
		leadTime:     DefaultLeadTime,
		maxLookahead: DefaultMaxLookahead,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AvailableSlots returns the bookable slots for a date. When fewer than
// three remain, availability from following days is appended so the user
// always sees real choices; the lookahead stops after maxLookahead days.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.availableSlots(ctx, day, 0)
}

func (s *Service) availableSlots(ctx context.Context, day time.Time, depth int) ([]string, error) {
	date := day.Format(dateLayout)
	rec, err := s.store.DayRecord(ctx, date)
	if err != nil {
		return nil, err
	}

	var available []string
	for _, slot := range GenerateSlots(day, s.now().UTC(), s.leadTime) {
		if !rec.Booked(slot) {
			available = append(available, slot)
		}
	}

	if len(available) < rolloverThreshold {
		if depth >= s.maxLookahead {
			s.logger.Warn("availability lookahead exhausted", "date", date, "depth", depth)
			return available, nil
		}
		next, err := s.availableSlots(ctx, day.AddDate(0, 0, 1), depth+1)
		if err != nil {
			return nil, err
		}
		available = append(available, next...)
	}

	return available, nil
}

// Book atomically claims timeSlot for owner. The slot must be currently
// offered for its own date; conflicts surface as ErrSlotAlreadyBooked so
// the caller can tell the user, not retry.
func (s *Service) Book(ctx context.Context, timeSlot, owner string) error {
	start, err := ParseSlot(timeSlot)
	if err != nil {
		return err
	}
	date := start.Format(dateLayout)

	// Validity is judged against the slot grid, not current bookings: a
	// taken slot is a conflict for the store CAS to report, not an
	// invalid request.
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if !contains(GenerateSlots(day, s.now().UTC(), s.leadTime), timeSlot) {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, timeSlot)
	}

	expiry := start.Add(SlotDuration).Unix()
	if err := s.store.BookSlot(ctx, date, timeSlot, owner, expiry); err != nil {
		return err
	}

	s.logger.Info("slot booked", "date", date, "slot", timeSlot, "owner", owner)
	return nil
}

func contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
