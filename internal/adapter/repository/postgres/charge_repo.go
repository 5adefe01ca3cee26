package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

// ChargeRepository implements usecase.ChargeRepository. Entry
// associations live in the charge_entries join table and are loaded with
// every charge read.
type ChargeRepository struct {
	pool *pgxpool.Pool
}

// NewChargeRepository creates a new ChargeRepository.
func NewChargeRepository(pool *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

const chargeColumns = `id, member_id, payment_method_id, external_id, amount, currency, state, created_at, updated_at`

// Create creates a new charge.
func (r *ChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO charges (`+chargeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		charge.ID,
		charge.MemberID,
		charge.PaymentMethodID,
		charge.ExternalID,
		decimalToNumeric(charge.Amount),
		charge.Currency,
		string(charge.State),
		timeToPgTimestamptz(charge.CreatedAt),
		timeToPgTimestamptz(charge.UpdatedAt),
	)

	return err
}

// GetByID retrieves a charge by ID, including its entry associations.
func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE id = $1`, id)

	charge, err := scanCharge(row)
	if err != nil {
		return nil, err
	}

	charge.EntryIDs, err = r.entryIDs(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	return charge, nil
}

// GetByIDForUpdate retrieves a charge by ID with a FOR UPDATE lock.
func (r *ChargeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Charge, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE id = $1 FOR UPDATE`, id)

	charge, err := scanCharge(row)
	if err != nil {
		return nil, err
	}

	charge.EntryIDs, err = r.entryIDs(ctx, pgxTx, id)
	if err != nil {
		return nil, err
	}

	return charge, nil
}

// ListByMember lists a member's charges, newest first.
func (r *ChargeRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+chargeColumns+` FROM charges
		 WHERE member_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		memberID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return collectCharges(rows)
}

// ListByStates lists charges in any of the given states, oldest first so
// reconciliation drains the backlog in order.
func (r *ChargeRepository) ListByStates(ctx context.Context, states []domain.ChargeState, limit, offset int) ([]*domain.Charge, error) {
	stateStrings := make([]string, len(states))
	for i, s := range states {
		stateStrings[i] = string(s)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+chargeColumns+` FROM charges
		 WHERE state = ANY($1) ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		stateStrings, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return collectCharges(rows)
}

// UpdateSubmitted records the gateway's external id and moves the charge
// to submitted.
func (r *ChargeRepository) UpdateSubmitted(ctx context.Context, tx usecase.Transaction, id, externalID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE charges SET external_id = $2, state = $3, updated_at = $4 WHERE id = $1`,
		id, externalID, string(domain.ChargeStateSubmitted), timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}

	return nil
}

// UpdateState moves the charge to a new state. A nil tx runs outside any
// transaction, for single-statement transitions like submitted to
// successful.
func (r *ChargeRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, state domain.ChargeState, updatedAt time.Time) error {
	query := `UPDATE charges SET state = $2, updated_at = $3 WHERE id = $1`
	args := []any{id, string(state), timeToPgTimestamptz(updatedAt)}

	if tx != nil {
		tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrChargeNotFound
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}

	return nil
}

// AddEntry associates a posted ledger entry with the charge.
func (r *ChargeRepository) AddEntry(ctx context.Context, tx usecase.Transaction, chargeID, entryID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`INSERT INTO charge_entries (charge_id, entry_id) VALUES ($1, $2)`,
		chargeID, entryID,
	)

	return err
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *ChargeRepository) entryIDs(ctx context.Context, q pgxQuerier, chargeID string) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT entry_id FROM charge_entries WHERE charge_id = $1 ORDER BY entry_id`,
		chargeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func collectCharges(rows pgx.Rows) ([]*domain.Charge, error) {
	defer rows.Close()

	var charges []*domain.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}

	return charges, rows.Err()
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	var (
		charge    domain.Charge
		amount    pgtype.Numeric
		state     string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&charge.ID,
		&charge.MemberID,
		&charge.PaymentMethodID,
		&charge.ExternalID,
		&amount,
		&charge.Currency,
		&state,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}

		return nil, err
	}

	charge.Amount = numericToDecimal(amount)
	charge.State = domain.ChargeState(state)
	charge.CreatedAt = createdAt.Time
	charge.UpdatedAt = updatedAt.Time

	return &charge, nil
}
