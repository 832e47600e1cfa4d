package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidID         = errors.New("order: invalid id")
	ErrMissingID         = errors.New("order: id is required")
	ErrInvalidStatus     = errors.New("order: invalid status")
	ErrInvalidTransition = errors.New("order: invalid status transition")
	ErrNoItems           = errors.New("order: order has no items")
)

type Status string

const (
	StatusCreated     Status = "created"
	StatusReceived    Status = "received"
	StatusPreparation Status = "preparation"
	StatusReady       Status = "ready"
	StatusFinished    Status = "finished"
	StatusCanceled    Status = "canceled"
)

// lifecycleIndex orders the forward path created → received → preparation →
// ready → finished. Canceled sits outside the path.
var lifecycleIndex = map[Status]int{
	StatusCreated:     0,
	StatusReceived:    1,
	StatusPreparation: 2,
	StatusReady:       3,
	StatusFinished:    4,
}

// listPriority drives the kitchen listing: ready first, then preparation,
// received and created. Anything else (finished, canceled) sorts last.
var listPriority = map[Status]int{
	StatusReady:       0,
	StatusPreparation: 1,
	StatusReceived:    2,
	StatusCreated:     3,
}

const listPriorityLast = 1 << 30

// ParseStatus validates a raw status string against the closed enum.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusCreated, StatusReceived, StatusPreparation, StatusReady, StatusFinished, StatusCanceled:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// ListPriority returns the sort rank of a status in the unfiltered listing.
func (s Status) ListPriority() int {
	if p, ok := listPriority[s]; ok {
		return p
	}
	return listPriorityLast
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCanceled
}

// CanTransitionTo allows same-status updates, any forward move along the
// lifecycle, and cancellation from any non-terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	if target == StatusCanceled {
		return !s.Terminal()
	}
	from, okFrom := lifecycleIndex[s]
	to, okTo := lifecycleIndex[target]
	return okFrom && okTo && to > from
}

type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId,omitempty"`
	Status     Status    `json:"status"`
	ReadableID *int      `json:"readableId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// New creates an order in the initial lifecycle state. The readable id stays
// unset until payment confirmation assigns it.
func New(id, customerID string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:         id,
		CustomerID: customerID,
		Status:     StatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (o *Order) Touch() {
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.ReadableID != nil {
		v := *o.ReadableID
		clone.ReadableID = &v
	}
	return &clone
}
