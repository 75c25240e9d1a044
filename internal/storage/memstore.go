package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/henriquexaud/OrdersAPI/internal/domain"
)

// MemStore is an in-memory order store with the same conditional-update
// semantics as the Postgres Store. It backs tests and local development;
// nothing in the claim protocol cares which of the two it talks to.
type MemStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	byKey  map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders: make(map[string]*domain.Order),
		byKey:  make(map[string]string),
	}
}

func (m *MemStore) CreateOrder(_ context.Context, orderID, customer string, total float64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byKey[orderID]; ok {
		return nil, ErrDuplicateOrder
	}
	now := time.Now().UTC()
	o := &domain.Order{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Customer:  customer,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.orders[o.ID] = o
	m.byKey[o.OrderID] = o.ID
	return cloneOrder(o), nil
}

func (m *MemStore) FindByOrderID(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byKey[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(m.orders[id]), nil
}

func (m *MemStore) FetchPending(_ context.Context, limit, maxAttempts int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Order
	for _, o := range m.orders {
		if o.Status == domain.StatusPending && o.LockedAt == nil && o.Attempts < maxAttempts {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) TryClaim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.Status != domain.StatusPending || o.LockedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	o.LockedAt = &now
	o.UpdatedAt = now
	return true, nil
}

func (m *MemStore) MarkProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	o.Status = domain.StatusProcessed
	o.LockedAt = nil
	o.LastError = nil
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemStore) MarkFailed(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	o.Attempts++
	o.LastError = &message
	o.LockedAt = nil
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Seed inserts an order as-is, assigning an id when absent. Lets tests and
// fixtures control fields like Attempts and CreatedAt directly.
func (m *MemStore) Seed(o domain.Order) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	m.orders[o.ID] = &o
	m.byKey[o.OrderID] = o.ID
	return cloneOrder(&o)
}

// Get returns the current row by internal id, or nil.
func (m *MemStore) Get(id string) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	return cloneOrder(o)
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	if o.LockedAt != nil {
		t := *o.LockedAt
		c.LockedAt = &t
	}
	if o.LastError != nil {
		s := *o.LastError
		c.LastError = &s
	}
	return &c
}
