package services

import (
	"context"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/geo"
	"github.com/vytor/studyflash/internal/geofence"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// GeofenceService tracks which favorite location each user is studying at.
type GeofenceService interface {
	// Transition applies an ENTER or EXIT reported by a device for one location.
	Transition(ctx context.Context, ownerID, locationID string, transition models.GeofenceTransition) (models.CurrentLocation, error)
	// Locate evaluates a raw position against the user's favorites and moves
	// the tracked state to match.
	Locate(ctx context.Context, ownerID string, latitude, longitude float64) (models.CurrentLocation, error)
	Current(ctx context.Context, ownerID string) models.CurrentLocation
}

type geofenceService struct {
	locationRepo repository.LocationRepository
	tracker      *geofence.Tracker
}

// NewGeofenceService creates a new GeofenceService
func NewGeofenceService(locationRepo repository.LocationRepository, tracker *geofence.Tracker) GeofenceService {
	return &geofenceService{locationRepo: locationRepo, tracker: tracker}
}

func (s *geofenceService) Transition(ctx context.Context, ownerID, locationID string, transition models.GeofenceTransition) (models.CurrentLocation, error) {
	log := logger.FromContext(ctx)
	log.Debug("geofence transition: owner_id=%s, location_id=%s, transition=%s", ownerID, locationID, transition)

	if transition != models.GeofenceEnter && transition != models.GeofenceExit {
		return models.CurrentLocation{}, errors.NewValidationError("transition", "must be ENTER or EXIT")
	}
	loc, err := ownedLocation(ctx, s.locationRepo, ownerID, locationID)
	if err != nil {
		return models.CurrentLocation{}, err
	}
	if _, err := s.tracker.Apply(ctx, ownerID, transition, *loc); err != nil {
		return models.CurrentLocation{}, errors.NewBadRequestError(err.Error())
	}
	return s.Current(ctx, ownerID), nil
}

func (s *geofenceService) Locate(ctx context.Context, ownerID string, latitude, longitude float64) (models.CurrentLocation, error) {
	log := logger.FromContext(ctx)
	log.Debug("locating user: owner_id=%s", ownerID)

	if err := validateCoordinates(latitude, longitude); err != nil {
		return models.CurrentLocation{}, err
	}
	locations, err := s.locationRepo.List(ctx, ownerID)
	if err != nil {
		log.Error("failed to list locations: %v", err)
		return models.CurrentLocation{}, errors.NewInternalError(err)
	}

	current, inside := s.tracker.Current(ownerID)
	loc, found := geo.Within(latitude, longitude, locations)
	switch {
	case found && (!inside || current.Location.ID != loc.ID):
		if _, err := s.tracker.Apply(ctx, ownerID, models.GeofenceEnter, loc); err != nil {
			return models.CurrentLocation{}, errors.NewInternalError(err)
		}
	case !found && inside:
		if _, err := s.tracker.Apply(ctx, ownerID, models.GeofenceExit, *current.Location); err != nil {
			return models.CurrentLocation{}, errors.NewInternalError(err)
		}
	}
	return s.Current(ctx, ownerID), nil
}

func (s *geofenceService) Current(ctx context.Context, ownerID string) models.CurrentLocation {
	current, _ := s.tracker.Current(ownerID)
	return current
}
