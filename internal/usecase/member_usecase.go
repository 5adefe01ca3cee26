package usecase

import (
	"context"
	"time"

	"github.com/iho/duesledger/internal/domain"
)

// MemberUseCase handles member and membership-plan administration.
type MemberUseCase struct {
	memberRepo  MemberRepository
	planRepo    PlanRepository
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewMemberUseCase creates a new MemberUseCase.
func NewMemberUseCase(
	memberRepo MemberRepository,
	planRepo PlanRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
) *MemberUseCase {
	return &MemberUseCase{
		memberRepo:  memberRepo,
		planRepo:    planRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreatePlanInput represents input for creating a membership plan.
type CreatePlanInput struct {
	Name            string
	Cost            string
	PeriodMonths    int
	HasKeyfob       bool
	HasRoomKey      bool
	HasVoting       bool
	HasPowertools   bool
	IncomeAccountID string
}

// CreatePlan creates a membership plan crediting the given income account.
func (uc *MemberUseCase) CreatePlan(ctx context.Context, input CreatePlanInput) (*domain.MembershipPlan, error) {
	cost, err := parseAmount(input.Cost)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.IncomeAccountID)
	if err != nil {
		return nil, err
	}
	if account.Class != domain.AccountClassIncome {
		return nil, domain.ErrInvalidAccountClass
	}

	plan := &domain.MembershipPlan{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		Cost:            cost,
		PeriodMonths:    input.PeriodMonths,
		HasKeyfob:       input.HasKeyfob,
		HasRoomKey:      input.HasRoomKey,
		HasVoting:       input.HasVoting,
		HasPowertools:   input.HasPowertools,
		IncomeAccountID: input.IncomeAccountID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// GetPlan retrieves a plan by ID.
func (uc *MemberUseCase) GetPlan(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	return uc.planRepo.GetByID(ctx, id)
}

// ListPlans lists plans with pagination.
func (uc *MemberUseCase) ListPlans(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.planRepo.List(ctx, limit, offset)
}

// CreateMemberInput represents input for creating a member.
type CreateMemberInput struct {
	Name       string
	Email      string
	AccountID  string
	PlanID     *string
	LastBilled time.Time
}

// CreateMember creates a member with a liability account and an optional
// plan. A member without a plan is never billed. LastBilled defaults to
// today: a fresh member owes nothing until one plan period has elapsed.
func (uc *MemberUseCase) CreateMember(ctx context.Context, input CreateMemberInput) (*domain.Member, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Class != domain.AccountClassLiability {
		return nil, domain.ErrInvalidAccountClass
	}

	if input.PlanID != nil {
		if _, err := uc.planRepo.GetByID(ctx, *input.PlanID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	lastBilled := input.LastBilled
	if lastBilled.IsZero() {
		lastBilled = domain.Date(now.Year(), now.Month(), now.Day())
	}

	member := &domain.Member{
		ID:         uc.idGen.Generate(),
		Name:       input.Name,
		Email:      input.Email,
		AccountID:  input.AccountID,
		PlanID:     input.PlanID,
		LastBilled: lastBilled,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// GetMember retrieves a member by ID.
func (uc *MemberUseCase) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	return uc.memberRepo.GetByID(ctx, id)
}

// ListMembers lists members with pagination.
func (uc *MemberUseCase) ListMembers(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.memberRepo.List(ctx, limit, offset)
}

// AssignPlan assigns a plan to a member, or removes it when planID is
// nil. Removing the plan stops future billing; it never touches already
// posted entries.
func (uc *MemberUseCase) AssignPlan(ctx context.Context, memberID string, planID *string) error {
	if _, err := uc.memberRepo.GetByID(ctx, memberID); err != nil {
		return err
	}

	if planID != nil {
		if _, err := uc.planRepo.GetByID(ctx, *planID); err != nil {
			return err
		}
	}

	return uc.memberRepo.UpdatePlan(ctx, memberID, planID, time.Now().UTC())
}
