package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/duesledger/internal/domain"
)

// PlanRepository implements usecase.PlanRepository.
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

const planColumns = `id, name, cost, period_months, has_keyfob, has_room_key, has_voting, has_powertools, income_account_id, created_at`

// Create creates a new membership plan.
func (r *PlanRepository) Create(ctx context.Context, plan *domain.MembershipPlan) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO membership_plans (`+planColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		plan.ID,
		plan.Name,
		decimalToNumeric(plan.Cost),
		plan.PeriodMonths,
		plan.HasKeyfob,
		plan.HasRoomKey,
		plan.HasVoting,
		plan.HasPowertools,
		plan.IncomeAccountID,
		timeToPgTimestamptz(plan.CreatedAt),
	)

	return err
}

// GetByID retrieves a plan by ID.
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM membership_plans WHERE id = $1`, id)

	return scanPlan(row)
}

// List lists plans with pagination.
func (r *PlanRepository) List(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+planColumns+` FROM membership_plans ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.MembershipPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func scanPlan(row pgx.Row) (*domain.MembershipPlan, error) {
	var (
		plan      domain.MembershipPlan
		cost      pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&plan.ID,
		&plan.Name,
		&cost,
		&plan.PeriodMonths,
		&plan.HasKeyfob,
		&plan.HasRoomKey,
		&plan.HasVoting,
		&plan.HasPowertools,
		&plan.IncomeAccountID,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}

		return nil, err
	}

	plan.Cost = numericToDecimal(cost)
	plan.CreatedAt = createdAt.Time

	return &plan, nil
}
