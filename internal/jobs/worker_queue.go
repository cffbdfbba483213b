package jobs

import (
	"github.com/vytor/studyflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	chatPool *worker.Pool
	replier  worker.ChatReplier
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(chatPool *worker.Pool, replier worker.ChatReplier) JobQueue {
	return &WorkerQueue{
		chatPool: chatPool,
		replier:  replier,
	}
}

func (q *WorkerQueue) EnqueueChatReply(ownerID, messageID string) error {
	return q.chatPool.Submit(&worker.ChatReplyJob{
		Replier:   q.replier,
		OwnerID:   ownerID,
		MessageID: messageID,
	})
}
