package worker

import "context"

// ChatReplier produces and stores the assistant's answer to a user message.
// Declared here so the worker package does not import services.
type ChatReplier interface {
	Reply(ctx context.Context, ownerID, messageID string) error
}

type ChatReplyJob struct {
	Replier   ChatReplier
	OwnerID   string
	MessageID string
}

func (j *ChatReplyJob) Name() string { return "chat_reply" }

func (j *ChatReplyJob) Run(ctx context.Context) error {
	return j.Replier.Reply(ctx, j.OwnerID, j.MessageID)
}
