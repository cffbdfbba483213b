package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (s *Server) handleStartStudy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	session, err := s.Study.Start(r.Context(), user.ID, chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("study session started: session_id=%s, cards=%d", session.ID, len(session.CardIDs))
	writeJSON(w, r, http.StatusCreated, session)
}

func (s *Server) handleStudyCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	card, err := s.Study.Card(r.Context(), user.ID, chi.URLParam(r, "sessionID"), chi.URLParam(r, "cardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleStudyLocation(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req coordinatesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	err := s.Study.SetLocation(r.Context(), user.ID, chi.URLParam(r, "sessionID"), *req.Latitude, *req.Longitude)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStudyAnswer(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var answer models.Answer
	if err := decodeJSON(w, r, &answer); err != nil {
		handleError(w, r, err)
		return
	}

	outcome, err := s.Study.Answer(r.Context(), user.ID, chi.URLParam(r, "sessionID"), answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, outcome)
}

func (s *Server) handleFinishStudy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	stat, err := s.Study.Finish(r.Context(), user.ID, chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("study session finished: session_id=%s, score=%.2f/%.2f", stat.ID, stat.TotalScore, stat.TotalPossible)
	writeJSON(w, r, http.StatusOK, stat)
}

func (s *Server) handleAbandonStudy(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.Study.Abandon(r.Context(), user.ID, chi.URLParam(r, "sessionID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stat, err := s.Study.Stored(r.Context(), user.ID, chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stat)
}
