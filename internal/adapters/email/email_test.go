package email

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: Queue, Type: task.Type()}, nil
}

type recordingSender struct {
	got []SendRequest
}

func (r *recordingSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	r.got = append(r.got, req)
	return SendResult{MessageID: "delivered"}, nil
}

func (r *recordingSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	return sendAll(ctx, r, reqs)
}

// TestQueueSender_RoundTrip verifies an enqueued email is delivered by the worker handler.
func TestQueueSender_RoundTrip(t *testing.T) {
	q := &fakeEnqueuer{}
	sender := NewQueueSender(q)
	req := SendRequest{To: []string{"cadet@unit.org"}, Subject: "Welcome", HTML: "<p>hi</p>", ReplyTo: "office@unit.org"}

	res, err := sender.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "task-1" || len(q.tasks) != 1 || q.tasks[0].Type() != TaskSend {
		t.Fatalf("unexpected enqueue %+v / %d tasks", res, len(q.tasks))
	}

	delivery := &recordingSender{}
	w := &Worker{delivery: delivery}
	if err := w.HandleSend(context.Background(), q.tasks[0]); err != nil {
		t.Fatalf("HandleSend: %v", err)
	}
	if len(delivery.got) != 1 || delivery.got[0].Subject != "Welcome" || delivery.got[0].ReplyTo != "office@unit.org" {
		t.Errorf("unexpected delivery %+v", delivery.got)
	}
}

// TestWorker_HandleSend_BadPayload verifies malformed tasks are not retried.
func TestWorker_HandleSend_BadPayload(t *testing.T) {
	w := &Worker{delivery: &recordingSender{}}
	err := w.HandleSend(context.Background(), asynq.NewTask(TaskSend, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("expected SkipRetry, got %v", err)
	}
}

// TestQueueSender_EnqueueError verifies enqueue failures surface.
func TestQueueSender_EnqueueError(t *testing.T) {
	sender := NewQueueSender(&fakeEnqueuer{err: errors.New("redis down")})
	if _, err := sender.SendBatch(context.Background(), []SendRequest{{Subject: "a"}}); err == nil {
		t.Error("expected error")
	}
}

// TestNoopSender_Counts verifies the noop sender accepts everything.
func TestNoopSender_Counts(t *testing.T) {
	s := NewNoopSender()
	results, err := s.SendBatch(context.Background(), []SendRequest{{Subject: "a"}, {Subject: "b"}})
	if err != nil || len(results) != 2 || s.Sent() != 2 {
		t.Errorf("expected 2 noop sends, got %d (%v)", s.Sent(), err)
	}
}
