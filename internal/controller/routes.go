package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unclebandit/smsleopard-activation/internal/handler"
)

// NewRouter wires every route of the API.
func NewRouter(ac *ActivationController, eh *handler.EventHandler, ch *handler.ClientHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", eh.Health)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Get("/quota", eh.GetQuota)
		r.Post("/estimate", eh.Estimate)
		r.Get("/events", eh.ListEvents)
		r.Get("/events/{eventID}", eh.GetEvent)
		r.Get("/clients", ch.ListClients)
		r.Get("/clients/{clientID}", ch.GetClient)

		r.Post("/activations", ac.Activate)
		r.Post("/activations/{requestID}/confirm", ac.Confirm)
		r.Post("/activations/{requestID}/cancel", ac.Cancel)
		r.Post("/deactivations", ac.Deactivate)
	})

	return r
}
