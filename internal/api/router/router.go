// Package router assembles the HTTP surface of the local server: channel
// webhooks, the spa reservations API, health and metrics.
package router

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/costatartessos/hotel-assistant/internal/channels/telegram"
	"github.com/costatartessos/hotel-assistant/internal/channels/whatsapp"
	"github.com/costatartessos/hotel-assistant/internal/reservations"
	"github.com/costatartessos/hotel-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	WhatsApp       *whatsapp.WebhookHandler
	Telegram       *telegram.WebhookHandler
	Spa            *reservations.HTTPHandler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WhatsApp != nil {
		r.Get("/webhooks/whatsapp", serveWhatsApp(cfg.WhatsApp))
		r.Post("/webhooks/whatsapp", serveWhatsApp(cfg.WhatsApp))
	}

	if cfg.Telegram != nil {
		r.Post("/webhooks/telegram", func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			status, respBody := cfg.Telegram.HandleBody(r.Context(), body)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		})
	}

	if cfg.Spa != nil {
		r.Route("/spa", func(r chi.Router) {
			r.Get("/availability", cfg.Spa.GetAvailability)
			r.Post("/bookings", cfg.Spa.CreateBooking)
		})
	}

	return r
}

func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func serveWhatsApp(handler *whatsapp.WebhookHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		query := make(map[string]string, len(r.URL.Query()))
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		status, respBody := handler.HandleRequest(r.Context(), r.Method, query, body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}
}
