package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault        = "default"
	TaskTypeSendInvoice = "invoice:send"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue implements Sender by enqueuing the message for the worker.
type Queue struct {
	client   enqueuer
	maxRetry int
}

func NewQueue(client *asynq.Client, maxRetry int) *Queue {
	return &Queue{client: client, maxRetry: maxRetry}
}

func NewSendInvoiceTask(msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeSendInvoice, data), nil
}

func (q *Queue) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	task, err := NewSendInvoiceTask(msg)
	if err != nil {
		return fmt.Errorf("building send task: %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(q.maxRetry))
	if err != nil {
		return fmt.Errorf("enqueuing send task: %w", err)
	}

	slog.Info("invoice email queued", "task_id", info.ID, "subject", msg.Subject)

	return nil
}

// TaskHandler processes TaskTypeSendInvoice tasks with the wrapped Sender.
type TaskHandler struct {
	sender Sender
}

func NewTaskHandler(sender Sender) *TaskHandler {
	return &TaskHandler{sender: sender}
}

func (h *TaskHandler) HandleSendInvoiceTask(ctx context.Context, t *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("decoding payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := msg.validate(); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending invoice email: %w", err)
	}

	return nil
}
