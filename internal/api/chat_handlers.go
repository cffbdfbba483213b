package api

import (
	"net/http"

	"github.com/vytor/studyflash/internal/logger"
)

type sendChatRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

func (s *Server) handleListChat(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	messages, err := s.Chat.List(r.Context(), user.ID, int(limit))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messages)
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req sendChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	msg, err := s.Chat.Send(r.Context(), user.ID, req.Content)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("chat message queued: message_id=%s", msg.ID)
	writeJSON(w, r, http.StatusAccepted, msg)
}
