package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/henriquexaud/OrdersAPI/internal/domain"
)

var (
	// ErrDuplicateOrder reports a create that hit the unique constraint on
	// the business order id.
	ErrDuplicateOrder = errors.New("order already exists")
	ErrOrderNotFound  = errors.New("order not found")
)

const pgUniqueViolation = "23505"

// Store persists orders in Postgres (source of truth).
type Store struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{db} }

const orderColumns = `id, order_id, customer, total, status, attempts, locked_at, last_error, created_at, updated_at`

// CreateOrder inserts a new PENDING order with attempts=0. A row that
// already exists for the same business id surfaces as ErrDuplicateOrder so
// the caller can fall back to a fetch.
func (s *Store) CreateOrder(ctx context.Context, orderID, customer string, total float64) (*domain.Order, error) {
	id := uuid.NewString()
	row := s.db.QueryRow(ctx, `insert into orders(id, order_id, customer, total, status, attempts)
values ($1, $2, $3, $4, 'PENDING', 0)
returning `+orderColumns, id, orderID, customer, total)
	o, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateOrder
		}
		return nil, errors.Wrap(err, "insert order")
	}
	return o, nil
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := s.db.QueryRow(ctx, `select `+orderColumns+` from orders where order_id = $1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "select order")
	}
	return o, nil
}

// FetchPending returns up to limit claimable orders, oldest first. Rows that
// are locked, already processed, or out of attempt budget are excluded.
// Read-only; claiming happens per row via TryClaim.
func (s *Store) FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Order, error) {
	rows, err := s.db.Query(ctx, `select `+orderColumns+` from orders
where status = 'PENDING' and locked_at is null and attempts < $1
order by created_at asc
limit $2`, maxAttempts, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select pending orders")
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan pending order")
		}
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "iterate pending orders")
}

// TryClaim is the mutual-exclusion primitive: a single conditional update
// that sets locked_at only if the row is still unlocked and PENDING. Exactly
// one of any number of concurrent callers observes true.
func (s *Store) TryClaim(ctx context.Context, id string) (bool, error) {
	ct, err := s.db.Exec(ctx, `update orders
set locked_at = now(), updated_at = now()
where id = $1 and locked_at is null and status = 'PENDING'`, id)
	if err != nil {
		return false, errors.Wrap(err, "claim order")
	}
	return ct.RowsAffected() == 1, nil
}

// MarkProcessed records terminal success and releases the claim. The update
// is an unconditional field set, so a repeated call rewrites the same
// terminal values and is not an error.
func (s *Store) MarkProcessed(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `update orders
set status = 'PROCESSED', locked_at = null, last_error = null, updated_at = now()
where id = $1`, id)
	return errors.Wrap(err, "mark order processed")
}

// MarkFailed records a failed attempt and releases the claim. Status stays
// PENDING; exclusion after the attempt ceiling happens at fetch time.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	_, err := s.db.Exec(ctx, `update orders
set attempts = attempts + 1, last_error = $2, locked_at = null, updated_at = now()
where id = $1`, id, message)
	return errors.Wrap(err, "mark order failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.OrderID, &o.Customer, &o.Total, &status,
		&o.Attempts, &o.LockedAt, &o.LastError, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	return &o, nil
}
