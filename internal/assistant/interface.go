package assistant

import "context"

// Service is the remote grading, generation and chat backend.
type Service interface {
	ValidateAnswer(ctx context.Context, req ValidateRequest) (ValidateResponse, error)
	GenerateFlashcards(ctx context.Context, deckID string, req GenerateRequest) error
	Respond(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// Ensure Client implements the interface
var _ Service = (*Client)(nil)
