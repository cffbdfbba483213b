package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleRegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(s.userMiddleware)

			r.Get("/users/me", s.handleCurrentUser)

			r.Get("/decks", s.handleListDecks)
			r.Post("/decks", s.handleCreateDeck)
			r.Route("/decks/{deckID}", func(r chi.Router) {
				r.Get("/", s.handleGetDeck)
				r.Delete("/", s.handleDeleteDeck)

				r.Get("/cards", s.handleListCards)
				r.Post("/cards", s.handleCreateCard)
				r.Get("/cards/{cardID}", s.handleGetCard)
				r.Put("/cards/{cardID}", s.handleUpdateCard)
				r.Delete("/cards/{cardID}", s.handleDeleteCard)

				r.Get("/sessions", s.handleDeckSessions)
				r.Post("/study", s.handleStartStudy)
				r.With(s.rateLimitMiddleware).Post("/generate", s.handleGenerate)
			})

			r.Route("/study/{sessionID}", func(r chi.Router) {
				r.Get("/cards/{cardID}", s.handleStudyCard)
				r.Post("/location", s.handleStudyLocation)
				r.Post("/answers", s.handleStudyAnswer)
				r.Post("/finish", s.handleFinishStudy)
				r.Delete("/", s.handleAbandonStudy)
			})

			r.Get("/sessions/{sessionID}", s.handleGetSession)
			r.Get("/stats", s.handleStats)

			r.Get("/locations", s.handleListLocations)
			r.Post("/locations", s.handleCreateLocation)
			r.Delete("/locations/{locationID}", s.handleDeleteLocation)

			r.Post("/geofence/transitions", s.handleGeofenceTransition)
			r.Post("/geofence/locate", s.handleGeofenceLocate)
			r.Get("/geofence/current", s.handleGeofenceCurrent)

			r.Get("/chat/messages", s.handleListChat)
			r.With(s.rateLimitMiddleware).Post("/chat/messages", s.handleSendChat)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errMethodNotAllowed(r))
	})
	return r
}
