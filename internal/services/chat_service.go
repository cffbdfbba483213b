package services

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/assistant"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/worker"
)

const (
	maxChatMessageLength = 4000
	// chatHistoryTurns is how much of the conversation is sent with each request.
	chatHistoryTurns = 20
	defaultChatPage  = 50
)

// ChatService handles the user's side of the assistant conversation.
type ChatService interface {
	Send(ctx context.Context, ownerID, content string) (*models.ChatMessage, error)
	List(ctx context.Context, ownerID string, limit int) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	queue    jobs.JobQueue
}

// NewChatService creates a new ChatService
func NewChatService(chatRepo repository.ChatRepository, queue jobs.JobQueue) ChatService {
	return &chatService{chatRepo: chatRepo, queue: queue}
}

// Send stores the user's message as pending and queues the assistant reply.
func (s *chatService) Send(ctx context.Context, ownerID, content string) (*models.ChatMessage, error) {
	log := logger.FromContext(ctx)
	log.Debug("sending chat message: owner_id=%s", ownerID)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.NewValidationError("content", "cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxChatMessageLength {
		return nil, errors.NewValidationError("content", "must be at most 4000 characters")
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Role:      models.ChatRoleUser,
		Content:   content,
		Status:    models.ChatStatusPending,
		CreatedAt: nowUTC(),
	}
	if err := s.chatRepo.Insert(ctx, msg); err != nil {
		log.Error("failed to insert chat message: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.queue.EnqueueChatReply(ownerID, msg.ID); err != nil {
		log.Warn("failed to enqueue chat reply: %v", err)
		if uerr := s.chatRepo.UpdateStatus(ctx, msg.ID, models.ChatStatusFailed); uerr != nil {
			log.Error("failed to mark chat message failed: %v", uerr)
		}
		if stderrors.Is(err, worker.ErrQueueFull) {
			return nil, errors.NewRateLimitedError()
		}
		return nil, errors.NewInternalError(err)
	}
	return &msg, nil
}

func (s *chatService) List(ctx context.Context, ownerID string, limit int) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing chat messages: owner_id=%s, limit=%d", ownerID, limit)

	if limit <= 0 {
		limit = defaultChatPage
	}
	messages, err := s.chatRepo.List(ctx, ownerID, limit)
	if err != nil {
		log.Error("failed to list chat messages: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return messages, nil
}

// ChatResponder produces assistant replies. It runs on the chat worker pool.
type ChatResponder struct {
	chatRepo  repository.ChatRepository
	assistant assistant.Service
}

// NewChatResponder creates a ChatResponder
func NewChatResponder(chatRepo repository.ChatRepository, svc assistant.Service) *ChatResponder {
	return &ChatResponder{chatRepo: chatRepo, assistant: svc}
}

var _ worker.ChatReplier = (*ChatResponder)(nil)

// Reply sends the recent conversation to the assistant and stores its answer.
// On failure the user's message is marked failed.
func (r *ChatResponder) Reply(ctx context.Context, ownerID, messageID string) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"owner_id":   ownerID,
		"message_id": messageID,
	})
	log.Debug("replying to chat message")

	history, err := r.chatRepo.List(ctx, ownerID, chatHistoryTurns)
	if err != nil {
		log.Error("failed to load chat history: %v", err)
		r.markFailed(ctx, messageID)
		return err
	}

	turns := make([]assistant.ChatTurn, 0, len(history))
	for _, m := range history {
		if m.Status == models.ChatStatusFailed {
			continue
		}
		turns = append(turns, assistant.ChatTurn{Role: m.Role, Content: m.Content})
	}

	resp, err := r.assistant.Respond(ctx, assistant.ChatRequest{UserID: ownerID, Messages: turns})
	if err != nil {
		log.Error("assistant failed to respond: %v", err)
		r.markFailed(ctx, messageID)
		return err
	}

	reply := models.ChatMessage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Role:      models.ChatRoleAssistant,
		Content:   resp.Reply,
		Status:    models.ChatStatusAnswered,
		CreatedAt: nowUTC(),
	}
	if err := r.chatRepo.Insert(ctx, reply); err != nil {
		log.Error("failed to store assistant reply: %v", err)
		r.markFailed(ctx, messageID)
		return err
	}
	if err := r.chatRepo.UpdateStatus(ctx, messageID, models.ChatStatusAnswered); err != nil {
		log.Warn("failed to mark chat message answered: %v", err)
	}
	log.Info("assistant replied")
	return nil
}

func (r *ChatResponder) markFailed(ctx context.Context, messageID string) {
	if err := r.chatRepo.UpdateStatus(ctx, messageID, models.ChatStatusFailed); err != nil {
		logger.FromContext(ctx).Warn("failed to mark chat message failed: %v", err)
	}
}
