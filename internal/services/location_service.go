package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/geofence"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// LocationInput describes a new favorite location. A nil Radius takes the
// service default.
type LocationInput struct {
	Name      string
	Latitude  float64
	Longitude float64
	Radius    *float64
}

// LocationService handles favorite location business logic
type LocationService interface {
	Create(ctx context.Context, ownerID string, in LocationInput) (*models.FavoriteLocation, error)
	List(ctx context.Context, ownerID string) ([]models.FavoriteLocation, error)
	Delete(ctx context.Context, ownerID, locationID string) error
}

type locationService struct {
	locationRepo  repository.LocationRepository
	tracker       *geofence.Tracker
	defaultRadius float64
}

// NewLocationService creates a new LocationService. tracker may be nil.
func NewLocationService(locationRepo repository.LocationRepository, tracker *geofence.Tracker, defaultRadius float64) LocationService {
	if defaultRadius <= 0 {
		defaultRadius = 100
	}
	return &locationService{locationRepo: locationRepo, tracker: tracker, defaultRadius: defaultRadius}
}

func (s *locationService) Create(ctx context.Context, ownerID string, in LocationInput) (*models.FavoriteLocation, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating location: owner_id=%s, name=%s", ownerID, in.Name)

	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	radius := s.defaultRadius
	if in.Radius != nil {
		radius = *in.Radius
	}
	if math.IsNaN(radius) || radius <= 0 {
		return nil, errors.NewValidationError("radius", "must be positive")
	}

	loc := models.FavoriteLocation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Radius:    radius,
		CreatedAt: nowUTC(),
	}
	if err := s.locationRepo.Insert(ctx, loc); err != nil {
		log.Error("failed to insert location: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &loc, nil
}

func (s *locationService) List(ctx context.Context, ownerID string) ([]models.FavoriteLocation, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing locations: owner_id=%s", ownerID)

	locations, err := s.locationRepo.List(ctx, ownerID)
	if err != nil {
		log.Error("failed to list locations: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return locations, nil
}

func (s *locationService) Delete(ctx context.Context, ownerID, locationID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting location: owner_id=%s, id=%s", ownerID, locationID)

	if _, err := ownedLocation(ctx, s.locationRepo, ownerID, locationID); err != nil {
		return err
	}
	if err := s.locationRepo.Delete(ctx, locationID); err != nil {
		if isNotFound(err) {
			return errors.NewNotFoundError("location", locationID)
		}
		log.Error("failed to delete location: %v", err)
		return errors.NewInternalError(err)
	}
	if s.tracker != nil {
		s.tracker.Forget(ownerID, locationID)
	}
	return nil
}

func ownedLocation(ctx context.Context, repo repository.LocationRepository, ownerID, locationID string) (*models.FavoriteLocation, error) {
	loc, err := repo.Get(ctx, locationID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("location", locationID)
		}
		logger.FromContext(ctx).Error("failed to get location: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if loc.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("location", locationID)
	}
	return loc, nil
}

func validateCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return errors.NewValidationError("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return errors.NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}
