package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"cadetportal/internal/observability"
)

// TaskSend is the asynq task type carrying one SendRequest.
const TaskSend = "email:send"

// Queue is the asynq queue used for outgoing mail.
const Queue = "email"

// NewSendTask encodes req as an asynq task.
func NewSendTask(req SendRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSend, payload), nil
}

// Enqueuer is the part of *asynq.Client used by QueueSender.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSender hands emails to asynq for delivery by a Worker.
type QueueSender struct {
	client Enqueuer
}

// NewQueueSender creates a sender that enqueues instead of delivering.
func NewQueueSender(client Enqueuer) *QueueSender {
	return &QueueSender{client: client}
}

// Send enqueues req.
// POST: MessageID is the asynq task ID
func (s *QueueSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	task, err := NewSendTask(req)
	if err != nil {
		return SendResult{}, err
	}
	info, err := s.client.EnqueueContext(ctx, task, asynq.Queue(Queue), asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if err != nil {
		return SendResult{}, fmt.Errorf("enqueue email: %w", err)
	}
	slog.Info("email_event", "event", "queued", "task_id", info.ID, "subject", req.Subject)
	return SendResult{MessageID: info.ID, SentAt: time.Now()}, nil
}

// SendBatch enqueues each request.
func (s *QueueSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	return sendAll(ctx, s, reqs)
}

// Worker delivers queued emails through a provider Sender.
type Worker struct {
	server   *asynq.Server
	delivery Sender
}

// NewWorker creates an asynq server that consumes the email queue.
func NewWorker(redis asynq.RedisConnOpt, delivery Sender) *Worker {
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			slog.Error("email_event", "event", "delivery_failed", "task", task.Type(), "error", err)
			observability.CaptureErr(err)
		}),
		Logger: asynqLogger{},
	})
	return &Worker{server: server, delivery: delivery}
}

// Handler returns the task mux served by the worker.
func (w *Worker) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSend, w.HandleSend)
	return mux
}

// HandleSend decodes one queued email and delivers it.
// POST: a malformed payload is skipped without retry
func (w *Worker) HandleSend(ctx context.Context, task *asynq.Task) error {
	var req SendRequest
	if err := json.Unmarshal(task.Payload(), &req); err != nil {
		return fmt.Errorf("decode email task: %v: %w", err, asynq.SkipRetry)
	}
	_, err := w.delivery.Send(ctx, req)
	return err
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	return w.server.Start(w.Handler())
}

// Shutdown waits for in-flight deliveries and stops the worker.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// asynqLogger routes asynq output through slog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { slog.Debug("asynq", "message", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { slog.Info("asynq", "message", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { slog.Warn("asynq", "message", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { slog.Error("asynq", "message", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { slog.Error("asynq_fatal", "message", fmt.Sprint(args...)) }
