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

// MemberRepository implements usecase.MemberRepository.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, name, email, account_id, plan_id, last_billed, gateway_customer_id, version, created_at, updated_at`

// Create creates a new member.
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (`+memberColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		member.ID,
		member.Name,
		member.Email,
		member.AccountID,
		member.PlanID,
		timeToPgDate(member.LastBilled),
		member.GatewayCustomerID,
		member.Version,
		timeToPgTimestamptz(member.CreatedAt),
		timeToPgTimestamptz(member.UpdatedAt),
	)

	return err
}

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id)

	return scanMember(row)
}

// GetByIDForUpdate retrieves a member by ID with a FOR UPDATE lock.
func (r *MemberRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id)

	return scanMember(row)
}

// List lists members with pagination, oldest first.
func (r *MemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// UpdatePlan assigns or removes the member's plan.
func (r *MemberRepository) UpdatePlan(ctx context.Context, id string, planID *string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE members SET plan_id = $2, updated_at = $3 WHERE id = $1`,
		id, planID, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// UpdateGatewayCustomer stores the member's gateway customer id.
func (r *MemberRepository) UpdateGatewayCustomer(ctx context.Context, id, customerID string, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE members SET gateway_customer_id = $2, updated_at = $3 WHERE id = $1`,
		id, customerID, timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}

// AdvanceLastBilled moves the billing anchor forward under an optimistic
// version check. Zero rows affected means another process advanced the
// member first.
func (r *MemberRepository) AdvanceLastBilled(ctx context.Context, tx usecase.Transaction, id string, lastBilled time.Time, version int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE members
		 SET last_billed = $2, version = version + 1, updated_at = $3
		 WHERE id = $1 AND version = $4`,
		id, timeToPgDate(lastBilled), timeToPgTimestamptz(updatedAt), version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleBillingState
	}

	return nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var (
		member     domain.Member
		lastBilled pgtype.Date
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.AccountID,
		&member.PlanID,
		&lastBilled,
		&member.GatewayCustomerID,
		&member.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}

		return nil, err
	}

	member.LastBilled = lastBilled.Time
	member.CreatedAt = createdAt.Time
	member.UpdatedAt = updatedAt.Time

	return &member, nil
}
