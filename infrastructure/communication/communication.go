package communication

import (
	"context"
	"errors"
	"fmt"
	"time"

	licensing "licensedesk.com/licensedesk/licensing/core"
)

// Multi fans an event out to every notifier and joins their errors.
type Multi []licensing.Notifier

func (m Multi) Notify(ctx context.Context, event licensing.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func describe(event licensing.Event) string {
	at := event.At.UTC().Format(time.RFC3339)
	switch event.Kind {
	case licensing.EventBound:
		return fmt.Sprintf("License %s activated on device %s at %s", event.SerialNumber, event.DeviceID, at)
	case licensing.EventReset:
		return fmt.Sprintf("License %s was reset at %s", event.SerialNumber, at)
	case licensing.EventDeviceMismatch:
		return fmt.Sprintf("License %s was presented by device %s but is bound to %s (%s)",
			event.SerialNumber, event.DeviceID, event.ExpectedDevice, at)
	}
	return fmt.Sprintf("License %s: %s at %s", event.SerialNumber, event.Kind, at)
}
