package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
)

// cardRequest carries the card variant in type and its fields in content.
type cardRequest struct {
	Type             models.CardType `json:"type" validate:"required,oneof=FRONT_BACK CLOZE FREE_TEXT MULTIPLE_CHOICE"`
	Content          json.RawMessage `json:"content" validate:"required"`
	QuestionImageRef string          `json:"question_image_ref" validate:"max=2048"`
	QuestionAudioRef string          `json:"question_audio_ref" validate:"max=2048"`
}

func (req cardRequest) input() (services.CardInput, error) {
	content, err := models.DecodeContent(req.Type, req.Content)
	if err != nil {
		return services.CardInput{}, errors.NewBadRequestError("invalid card content: " + err.Error())
	}
	return services.CardInput{
		Content:          content,
		QuestionImageRef: req.QuestionImageRef,
		QuestionAudioRef: req.QuestionAudioRef,
	}, nil
}

func (s *Server) decodeCard(w http.ResponseWriter, r *http.Request) (services.CardInput, error) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.CardInput{}, err
	}
	return req.input()
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	cards, err := s.Flashcards.List(r.Context(), user.ID, chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	in, err := s.decodeCard(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Flashcards.Create(r.Context(), user.ID, chi.URLParam(r, "deckID"), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	card, err := s.Flashcards.Get(r.Context(), user.ID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	in, err := s.decodeCard(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Flashcards.Update(r.Context(), user.ID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.Flashcards.Delete(r.Context(), user.ID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
