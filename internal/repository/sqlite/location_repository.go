package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

type locationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new LocationRepository implementation
func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Get(ctx context.Context, id string) (*models.FavoriteLocation, error) {
	log := logger.FromContext(ctx).WithPrefix("location_repo")
	log.Debug("getting location: id=%s", id)

	var l models.FavoriteLocation
	err := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, name, latitude, longitude, radius, created_at
FROM favorite_locations
WHERE id = ?
`, id).Scan(&l.ID, &l.OwnerID, &l.Name, &l.Latitude, &l.Longitude, &l.Radius, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("location not found: id=%s", id)
		} else {
			log.Error("failed to get location: %v", err)
		}
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) List(ctx context.Context, ownerID string) ([]models.FavoriteLocation, error) {
	log := logger.FromContext(ctx).WithPrefix("location_repo")
	log.Debug("listing locations: owner_id=%s", ownerID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, owner_id, name, latitude, longitude, radius, created_at
FROM favorite_locations
WHERE owner_id = ?
ORDER BY created_at, id
`, ownerID)
	if err != nil {
		log.Error("failed to query locations: %v", err)
		return nil, err
	}
	defer rows.Close()

	locations := []models.FavoriteLocation{}
	for rows.Next() {
		var l models.FavoriteLocation
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Latitude, &l.Longitude, &l.Radius, &l.CreatedAt); err != nil {
			log.Error("failed to scan location row: %v", err)
			return nil, err
		}
		locations = append(locations, l)
	}
	log.Debug("found %d locations", len(locations))
	return locations, rows.Err()
}

func (r *locationRepository) Insert(ctx context.Context, l models.FavoriteLocation) error {
	log := logger.FromContext(ctx).WithPrefix("location_repo")
	log.Debug("inserting location: id=%s, name=%s", l.ID, l.Name)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO favorite_locations (id, owner_id, name, latitude, longitude, radius, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, l.ID, l.OwnerID, l.Name, l.Latitude, l.Longitude, l.Radius, l.CreatedAt)
	if err != nil {
		log.Error("failed to insert location: %v", err)
	}
	return err
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("location_repo")
	log.Debug("deleting location: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM favorite_locations WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete location: %v", err)
		return err
	}
	return requireAffected(res)
}
