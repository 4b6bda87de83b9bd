// Package notify delivers workflow messages to employees and managers
// through the external chat gateway. Delivery is best-effort: a failed
// message never rolls back the state change that triggered it.
package notify

import "context"

// Notifier sends a text message to one chat recipient.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context, chatID int64, text string) error

// Send implements Notifier.
func (f Func) Send(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}
