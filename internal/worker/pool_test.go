package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/worker"
)

type funcJob struct {
	fn func(context.Context) error
}

func (j funcJob) Name() string                  { return "func" }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

type replierFunc func(ctx context.Context, ownerID, messageID string) error

func (f replierFunc) Reply(ctx context.Context, ownerID, messageID string) error {
	return f(ctx, ownerID, messageID)
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := worker.NewPool(2, 8)
	p.Start(context.Background())
	defer p.Stop()

	var ran atomic.Int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		err := p.Submit(funcJob{fn: func(context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return nil
		}})
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	assert.Equal(t, int32(3), ran.Load())
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	p := worker.NewPool(1, 8)
	p.Start(context.Background())
	defer p.Stop()

	done := make(chan struct{})
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error { panic("kaboom") }}))
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive earlier jobs")
	}
}

func TestPool_SubmitWhenFull(t *testing.T) {
	// not started: nothing drains the queue
	p := worker.NewPool(1, 1)

	noop := funcJob{fn: func(context.Context) error { return nil }}
	require.NoError(t, p.Submit(noop))
	assert.ErrorIs(t, p.Submit(noop), worker.ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool(1, 4)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}

func TestChatReplyJob_DelegatesToReplier(t *testing.T) {
	var gotOwner, gotMessage string
	job := &worker.ChatReplyJob{
		Replier: replierFunc(func(_ context.Context, ownerID, messageID string) error {
			gotOwner, gotMessage = ownerID, messageID
			return nil
		}),
		OwnerID:   "u1",
		MessageID: "m1",
	}

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "chat_reply", job.Name())
	assert.Equal(t, "u1", gotOwner)
	assert.Equal(t, "m1", gotMessage)
}
