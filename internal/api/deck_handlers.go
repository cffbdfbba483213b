package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
)

type createDeckRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type generateRequest struct {
	Type   models.CardType `json:"type" validate:"required,oneof=FRONT_BACK CLOZE FREE_TEXT MULTIPLE_CHOICE"`
	Prompt string          `json:"prompt" validate:"required,max=2000"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	decks, err := s.Decks.List(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req createDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.Decks.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	deck, err := s.Decks.Get(r.Context(), user.ID, chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.Decks.Delete(r.Context(), user.ID, chi.URLParam(r, "deckID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeckSessions lists finished sessions for a deck, newest first.
// from and to are epoch milliseconds.
func (s *Server) handleDeckSessions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var q services.HistoryQuery
	var err error
	if q.From, err = queryInt(r, "from", 0); err != nil {
		handleError(w, r, err)
		return
	}
	if q.To, err = queryInt(r, "to", 0); err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	q.Limit, q.Offset = int(limit), int(offset)

	sessions, err := s.Study.History(r.Context(), user.ID, chi.URLParam(r, "deckID"), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessions)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())
	deckID := chi.URLParam(r, "deckID")

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Generation.Generate(r.Context(), user.ID, deckID, req.Type, req.Prompt); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("flashcard generation requested: deck_id=%s, type=%s", deckID, req.Type)
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}
