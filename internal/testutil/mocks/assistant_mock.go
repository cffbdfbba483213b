package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyflash/internal/assistant"
)

// MockAssistant is a mock implementation of assistant.Service
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) ValidateAnswer(ctx context.Context, req assistant.ValidateRequest) (assistant.ValidateResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(assistant.ValidateResponse), args.Error(1)
}

func (m *MockAssistant) GenerateFlashcards(ctx context.Context, deckID string, req assistant.GenerateRequest) error {
	args := m.Called(ctx, deckID, req)
	return args.Error(0)
}

func (m *MockAssistant) Respond(ctx context.Context, req assistant.ChatRequest) (assistant.ChatResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(assistant.ChatResponse), args.Error(1)
}
