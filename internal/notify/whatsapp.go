package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrNoRecipient is returned when a message has no phone digits to send to.
var ErrNoRecipient = errors.New("message has no recipient")

// WhatsAppNotifier prepares click-to-chat links for outbound messages.
// The link is logged and handed to OnLink; opening it is up to the caller.
type WhatsAppNotifier struct {
	// OnLink receives every prepared link. Optional.
	OnLink func(link string)
}

// Notify builds the link for msg.
func (n *WhatsAppNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	link := WhatsAppLink(msg)
	slog.Info("WhatsApp message prepared", "to", msg.To, "link_length", len(link))
	if n.OnLink != nil {
		n.OnLink(link)
	}
	return nil
}

// AsyncNotifier dispatches to the wrapped notifier on a separate goroutine.
// Errors are logged, never returned.
type AsyncNotifier struct {
	next Notifier
	wg   sync.WaitGroup
}

// Async wraps next for fire-and-forget delivery.
func Async(next Notifier) *AsyncNotifier {
	return &AsyncNotifier{next: next}
}

// Notify schedules delivery and returns immediately.
func (a *AsyncNotifier) Notify(ctx context.Context, msg Message) error {
	// Delivery outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.next.Notify(ctx, msg); err != nil {
			slog.Warn("Notification failed", "to", msg.To, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every scheduled delivery has finished.
func (a *AsyncNotifier) Wait() {
	a.wg.Wait()
}
