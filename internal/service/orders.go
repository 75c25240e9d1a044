package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/henriquexaud/OrdersAPI/internal/domain"
	"github.com/henriquexaud/OrdersAPI/internal/storage"
)

// Store is the slice of the order store the intake path needs.
type Store interface {
	CreateOrder(ctx context.Context, orderID, customer string, total float64) (*domain.Order, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
}

type CreateOrderInput struct {
	OrderID  string
	Customer string
	Total    float64
}

// Service is the idempotent intake boundary consumed by the HTTP layer.
type Service struct {
	store Store
}

func New(store Store) *Service { return &Service{store: store} }

// CreateOrder creates a new PENDING order, or returns the existing row when
// the business id was already taken. The bool reports whether a row was
// created. Duplicate-key races between concurrent callers resolve to the
// winner's row; the loser never sees an error.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, bool, error) {
	o, err := s.store.CreateOrder(ctx, in.OrderID, in.Customer, in.Total)
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, storage.ErrDuplicateOrder) {
		return nil, false, err
	}
	existing, err := s.store.FindByOrderID(ctx, in.OrderID)
	if err != nil {
		return nil, false, errors.Wrap(err, "fetch existing order after duplicate insert")
	}
	return existing, false, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.FindByOrderID(ctx, orderID)
}
