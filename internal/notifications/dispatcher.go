// Package notifications alerts the teacher about student activity over the
// configured channels.
package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher fans a notification out to every configured notifier.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. With no notifiers it falls back to
// logging.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	if len(notifiers) == 0 {
		notifiers = []Notifier{LogNotifier{}}
	}
	return &Dispatcher{notifiers: notifiers, timeout: 30 * time.Second}
}

// Dispatch delivers n to every notifier and joins their errors. A failing
// channel does not stop the others.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range d.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Go delivers n in the background, detached from the caller's context.
// Failures are logged.
func (d *Dispatcher) Go(n Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.Dispatch(ctx, n); err != nil {
			slog.Error("delivering notification", "type", n.Type, "error", err)
		}
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
