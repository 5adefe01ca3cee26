package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/duesledger/internal/domain"
)

// PaymentMethodRepository implements usecase.PaymentMethodRepository.
type PaymentMethodRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository.
func NewPaymentMethodRepository(pool *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool}
}

const paymentMethodColumns = `id, name, is_recurring, is_automated, revenue_account_id, fee_account_id, created_at`

// Create creates a new payment method.
func (r *PaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payment_methods (`+paymentMethodColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		method.ID,
		method.Name,
		method.IsRecurring,
		method.IsAutomated,
		method.RevenueAccountID,
		method.FeeAccountID,
		timeToPgTimestamptz(method.CreatedAt),
	)

	return err
}

// GetByID retrieves a payment method by ID.
func (r *PaymentMethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)

	return scanPaymentMethod(row)
}

// List lists payment methods with pagination.
func (r *PaymentMethodRepository) List(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*domain.PaymentMethod
	for rows.Next() {
		method, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	return methods, rows.Err()
}

func scanPaymentMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	var (
		method    domain.PaymentMethod
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&method.ID,
		&method.Name,
		&method.IsRecurring,
		&method.IsAutomated,
		&method.RevenueAccountID,
		&method.FeeAccountID,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentMethodNotFound
		}

		return nil, err
	}

	method.CreatedAt = createdAt.Time

	return &method, nil
}
