package payment

import "fmt"

type NotificationState string

const (
	StateFinished             NotificationState = "FINISHED"
	StateConfirmationRequired NotificationState = "CONFIRMATION_REQUIRED"
	StateCanceled             NotificationState = "CANCELED"
)

// Notification is the transient inbound message delivered by the payment
// provider. ExternalReference correlates back to the order id.
type Notification struct {
	ID                string
	State             NotificationState
	ExternalReference string
	Amount            int64
}

func (n Notification) Validate() error {
	if n.State == "" {
		return &NotificationError{Reason: "missing state"}
	}
	if n.ExternalReference == "" {
		return &NotificationError{Reason: "missing external reference"}
	}
	return nil
}

// NotificationError marks a notification that cannot be reconciled: unknown
// state, unknown payment order, or a payment order past pending.
type NotificationError struct {
	Reason string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("payment notification: %s", e.Reason)
}

func NewNotificationError(format string, args ...any) *NotificationError {
	return &NotificationError{Reason: fmt.Sprintf(format, args...)}
}
