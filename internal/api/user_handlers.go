package api

import (
	"net/http"

	"github.com/vytor/studyflash/internal/logger"
)

type registerUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req registerUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.Users.Register(r.Context(), req.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("user registered: user_id=%s", user.ID)
	setUserCookie(w, user.ID)
	writeJSON(w, r, http.StatusCreated, user)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, userFromContext(r.Context()))
}
