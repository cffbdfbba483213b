package api

import (
	"context"

	"github.com/vytor/studyflash/internal/services"
)

// ReadinessChecker reports whether a backing dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type Server struct {
	DB         ReadinessChecker
	Users      services.UserService
	Decks      services.DeckService
	Flashcards services.FlashcardService
	Study      services.StudyService
	Stats      services.StatsService
	Locations  services.LocationService
	Geofence   services.GeofenceService
	Chat       services.ChatService
	Generation services.GenerationService

	// AILimiter throttles endpoints that call the remote assistant. Nil
	// disables throttling.
	AILimiter *RateLimiter
}
