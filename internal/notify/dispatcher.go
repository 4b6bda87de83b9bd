package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/pkg/config"
	"github.com/atelier-ops/workshop-api/pkg/jobs"
)

type message struct {
	ChatID int64
	Text   string
}

// Dispatcher decouples message delivery from request handling: Send only
// enqueues, a worker pool talks to the gateway and retries transient
// failures. Implements Notifier so callers cannot tell it from a direct
// client.
type Dispatcher struct {
	notifier Notifier
	queue    *jobs.Queue[message]
	logger   *zap.Logger
}

// NewDispatcher wraps a delivering notifier with an async retry queue.
func NewDispatcher(notifier Notifier, cfg config.NotifyConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{notifier: notifier, logger: logger}
	d.queue = jobs.New("notify", d.deliver, jobs.Config{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Send implements Notifier by queueing the message for delivery.
func (d *Dispatcher) Send(_ context.Context, chatID int64, text string) error {
	return d.queue.Enqueue(message{ChatID: chatID, Text: text})
}

func (d *Dispatcher) deliver(ctx context.Context, msg message) error {
	if err := d.notifier.Send(ctx, msg.ChatID, msg.Text); err != nil {
		return fmt.Errorf("deliver to %d: %w", msg.ChatID, err)
	}
	return nil
}
