package reservations

import (
	"context"
	"fmt"
	"time"
)

// Boundary protocol for the reservations service. The same request shapes
// work as a direct function call or across the Lambda RPC boundary.
const (
	ActionAvailability = "availability"
	ActionBooking      = "booking"
)

// Request is one reservations operation.
type Request struct {
	Action   string `json:"action"`
	Date     string `json:"date,omitempty"`
	TimeSlot string `json:"time_slot,omitempty"`
	Owner    string `json:"owner,omitempty"`
}

// AvailabilityResult is the response to an availability request.
type AvailabilityResult struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

// BookingResult is the response to a booking request.
type BookingResult struct {
	TimeSlot string `json:"time_slot"`
	Owner    string `json:"owner"`
	Booked   bool   `json:"booked"`
}

// Handler adapts the slot engine to the boundary protocol.
type Handler struct {
	svc *Service
}

// NewHandler wraps a service.
func NewHandler(svc *Service) *Handler {
	if svc == nil {
		panic("reservations: service cannot be nil")
	}
	return &Handler{svc: svc}
}

// Availability resolves the request date (today when empty) and returns
// the currently offered slots.
func (h *Handler) Availability(ctx context.Context, date string) (*AvailabilityResult, error) {
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}
	slots, err := h.svc.AvailableSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{Date: date, AvailableSlots: slots}, nil
}

// Book attempts the booking and reports the outcome. Typed slot errors
// pass through for the caller to render.
func (h *Handler) Book(ctx context.Context, timeSlot, owner string) (*BookingResult, error) {
	if err := h.svc.Book(ctx, timeSlot, owner); err != nil {
		return nil, err
	}
	return &BookingResult{TimeSlot: timeSlot, Owner: owner, Booked: true}, nil
}

// Handle dispatches a boundary request to the matching operation.
func (h *Handler) Handle(ctx context.Context, req Request) (any, error) {
	switch req.Action {
	case ActionAvailability:
		return h.Availability(ctx, req.Date)
	case ActionBooking:
		return h.Book(ctx, req.TimeSlot, req.Owner)
	default:
		return nil, fmt.Errorf("reservations: unsupported action %q", req.Action)
	}
}
