package domain

import "time"

// Status is the processing state of an order. PENDING is the initial state,
// PROCESSED is terminal. Failed attempts stay PENDING and are retried until
// the attempt ceiling excludes them from further polling.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
)

// Order is the unit of work handed from intake to the worker. OrderID is the
// caller-supplied business identifier and the dedupe key; ID is assigned by
// the store at creation and never changes.
type Order struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"orderId"`
	Customer  string     `json:"customer"`
	Total     float64    `json:"total"`
	Status    Status     `json:"status"`
	Attempts  int        `json:"attempts"`
	LockedAt  *time.Time `json:"lockedAt"`
	LastError *string    `json:"lastError"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Locked reports whether some worker currently holds a claim on the order.
func (o *Order) Locked() bool { return o.LockedAt != nil }
