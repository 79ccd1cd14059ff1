package notify

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"
)

// Notifier delivers a CMS notification
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotificationStore is the slice of the record store a RecordStoreNotifier needs
type NotificationStore interface {
	CreateNotification(ctx context.Context, n models.Notification) error
}

// RecordStoreNotifier writes notifications to the record store's notifications table
type RecordStoreNotifier struct {
	store NotificationStore
}

func NewRecordStoreNotifier(store NotificationStore) *RecordStoreNotifier {
	return &RecordStoreNotifier{store: store}
}

func (r *RecordStoreNotifier) Notify(ctx context.Context, n models.Notification) error {
	if err := r.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("record store notifier: %w", err)
	}
	return nil
}

// Composite delivers each notification to every registered Notifier.
type Composite struct {
	notifiers []Notifier
}

// NewComposite creates a Composite over the given notifiers
func NewComposite(notifiers ...Notifier) *Composite {
	c := &Composite{}
	for _, n := range notifiers {
		c.Add(n)
	}
	return c
}

// Add registers another notifier; nil is ignored.
func (c *Composite) Add(n Notifier) {
	if n != nil {
		c.notifiers = append(c.notifiers, n)
	}
}

// Notify calls every notifier and joins the failures into one error.
func (c *Composite) Notify(ctx context.Context, n models.Notification) error {
	if len(c.notifiers) == 0 {
		return fmt.Errorf("no notifiers configured")
	}

	var failures []string
	for _, notifier := range c.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("composite notify failed: [ %s ]", strings.Join(failures, "; "))
	}
	return nil
}
