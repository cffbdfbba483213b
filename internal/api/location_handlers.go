package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
)

type createLocationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	coordinatesRequest
	Radius *float64 `json:"radius" validate:"omitempty,gt=0"`
}

type transitionRequest struct {
	LocationID string                    `json:"location_id" validate:"required"`
	Transition models.GeofenceTransition `json:"transition" validate:"required,oneof=ENTER EXIT"`
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	locations, err := s.Locations.List(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, locations)
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req createLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	loc, err := s.Locations.Create(r.Context(), user.ID, services.LocationInput{
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    req.Radius,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, loc)
}

func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.Locations.Delete(r.Context(), user.ID, chi.URLParam(r, "locationID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGeofenceTransition(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	current, err := s.Geofence.Transition(r.Context(), user.ID, req.LocationID, req.Transition)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, current)
}

func (s *Server) handleGeofenceLocate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req coordinatesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	current, err := s.Geofence.Locate(r.Context(), user.ID, *req.Latitude, *req.Longitude)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, current)
}

func (s *Server) handleGeofenceCurrent(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, s.Geofence.Current(r.Context(), user.ID))
}
