package services

import (
	"context"
	"errors"

	"eventhub/internal/domain"
)

type multiNotifier []domain.EventNotifier

// NewMultiNotifier returns a notifier that forwards each change to every non-nil
// notifier and joins their errors. It returns nil when there is nothing to notify.
func NewMultiNotifier(notifiers ...domain.EventNotifier) domain.EventNotifier {
	var m multiNotifier
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func (m multiNotifier) NotifyStateChange(ctx context.Context, change domain.StateChange) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyStateChange(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
