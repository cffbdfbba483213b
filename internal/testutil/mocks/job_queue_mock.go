package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueChatReply(ownerID, messageID string) error {
	args := m.Called(ownerID, messageID)
	return args.Error(0)
}
