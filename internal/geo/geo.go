// Package geo provides great-circle distances and favorite location lookup.
package geo

import (
	"math"

	"github.com/vytor/studyflash/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine distance between two points in meters.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(a))
}

// Nearest returns the location whose center is closest to the point together
// with its distance. ok is false when locations is empty. Ties keep the
// earlier location.
func Nearest(lat, lng float64, locations []models.FavoriteLocation) (loc models.FavoriteLocation, dist float64, ok bool) {
	for i, l := range locations {
		d := Distance(lat, lng, l.Latitude, l.Longitude)
		if i == 0 || d < dist {
			loc, dist, ok = l, d, true
		}
	}
	return loc, dist, ok
}

// Within returns the nearest location when the point lies inside its radius.
// A point outside the nearest location's radius belongs to none, even if a
// farther location with a larger radius would contain it.
func Within(lat, lng float64, locations []models.FavoriteLocation) (models.FavoriteLocation, bool) {
	loc, dist, ok := Nearest(lat, lng, locations)
	if !ok || dist > loc.Radius {
		return models.FavoriteLocation{}, false
	}
	return loc, true
}
