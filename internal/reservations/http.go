package reservations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/costatartessos/hotel-assistant/internal/observability/metrics"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// bookingRequest is the POST body of the booking endpoint.
type bookingRequest struct {
	Date         string `json:"date"`
	TimeSlot     string `json:"time_slot"`
	CustomerName string `json:"customer_name"`
}

// HTTPHandler exposes availability and booking over HTTP. Conflicts come
// back as 409 so the generative flow can relay them verbatim.
type HTTPHandler struct {
	handler *Handler
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

// NewHTTPHandler wraps the boundary handler for HTTP serving.
func NewHTTPHandler(handler *Handler, m *metrics.ChatMetrics, logger *logging.Logger) *HTTPHandler {
	if handler == nil {
		panic("reservations: handler cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPHandler{handler: handler, metrics: m, logger: logger.Component("reservations")}
}

// GetAvailability handles GET ?date=YYYY-MM-DD.
func (h *HTTPHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	result, err := h.handler.Availability(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		h.logger.Error("availability lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "availability lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateBooking handles POST with a booking body.
func (h *HTTPHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeSlot == "" || req.CustomerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.Date != "" {
		if slotDate, err := SlotDate(req.TimeSlot); err != nil || slotDate != req.Date {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid time slot"})
			return
		}
	}

	result, err := h.handler.Book(r.Context(), req.TimeSlot, req.CustomerName)
	switch {
	case err == nil:
		h.metrics.ObserveBooking("confirmed")
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, ErrSlotAlreadyBooked):
		h.metrics.ObserveBooking("conflict")
		writeJSON(w, http.StatusConflict, map[string]string{"error": "This time slot is already booked"})
	case errors.Is(err, ErrInvalidSlot):
		h.metrics.ObserveBooking("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid time slot"})
	default:
		h.metrics.ObserveBooking("error")
		h.logger.Error("booking failed", "slot", req.TimeSlot, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "booking failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
