package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/daivaya/internal/horoscope"
	"github.com/starford/daivaya/internal/identity"
)

// NewRouter creates a chi router with all API routes mounted.
// Chart and account routes are public; paid and per-user routes go through
// AuthMiddleware. events, if non-nil, is mounted at GET /events.
func NewRouter(svc *horoscope.Service, auth identity.Provider, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/reset_password", h.ResetPassword)
	r.Post("/calculate_charts", h.CalculateCharts)
	r.Post("/prepare_porondam", h.PreparePorondam)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))

		r.Post("/generate_reading", h.GenerateReading)
		r.Post("/calculate_porondam", h.CalculatePorondam)
		r.Post("/deduct_pdf_credit", h.DeductPDFCredit)
		r.Get("/credits", h.Credits)
		r.Get("/readings", h.ListReadings)
		r.Get("/readings/{id}", h.GetReading)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	return r
}
