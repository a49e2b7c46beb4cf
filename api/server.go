/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the booking frontend

SECURITY NOTE:
  No authentication middleware. Identity and role come from the excluded
  session layer in front of this service.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pswdirect/care-engine/booking"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/quotes", h.CreateQuote)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/assign", h.AssignWorker)
			r.Post("/{id}/cancel", h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
				return h.Bookings.Cancel(r.Context(), id)
			}))
			r.Post("/{id}/archive", h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
				return h.Bookings.Archive(r.Context(), id)
			}))
			r.Post("/{id}/restore", h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
				return h.Bookings.Restore(r.Context(), id)
			}))
			r.Post("/{id}/pay", h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
				return h.Bookings.MarkPaid(r.Context(), id)
			}))
			r.Post("/{id}/refund", h.bookingAction(func(r *http.Request, id string) (booking.Booking, error) {
				return h.Bookings.Refund(r.Context(), id)
			}))
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/{id}/claim", h.ClaimShift)
			r.Post("/{id}/checkin", h.CheckInShift)
			r.Post("/{id}/signout", h.SignOutShift)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/settle", h.Settle)
			r.Post("/export", h.ExportSettlement)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/pricing-config", h.GetPricingConfig)
			r.Put("/pricing-config", h.SavePricingConfig)
			r.Get("/pay-rates", h.GetPayRates)
			r.Put("/pay-rates", h.SavePayRates)
			r.Get("/surge-rules", h.GetSurgeRules)
			r.Put("/surge-rules", h.SaveSurgeRules)
			r.Get("/tasks", h.ListTasks)
			r.Post("/tasks", h.SaveTask)
			r.Post("/tasks/{id}/disable", h.DisableTask)
		})
	})

	return r
}
