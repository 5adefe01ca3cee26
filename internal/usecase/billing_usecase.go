package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/duesledger/internal/domain"
)

// BillingUseCase advances members through recurring billing cycles.
type BillingUseCase struct {
	txManager  TransactionManager
	memberRepo MemberRepository
	planRepo   PlanRepository
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	locker     BillingLocker
}

// NewBillingUseCase creates a new BillingUseCase. The locker may be nil;
// the version check on the member row is the correctness backstop and the
// lock only avoids wasted work across concurrent runs.
func NewBillingUseCase(
	txManager TransactionManager,
	memberRepo MemberRepository,
	planRepo PlanRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	locker BillingLocker,
) *BillingUseCase {
	return &BillingUseCase{
		txManager:  txManager,
		memberRepo: memberRepo,
		planRepo:   planRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		locker:     locker,
	}
}

// NextBillDate returns the date the member's next cycle falls due, or nil
// when no plan is assigned.
func (uc *BillingUseCase) NextBillDate(ctx context.Context, member *domain.Member) (*time.Time, error) {
	if !member.HasPlan() {
		return nil, nil
	}

	plan, err := uc.planRepo.GetByID(ctx, *member.PlanID)
	if err != nil {
		return nil, err
	}

	next := domain.AddMonths(member.LastBilled, plan.PeriodMonths)

	return &next, nil
}

// IsBillingCurrent reports whether the member's next bill date is still
// in the future, or nil when no plan is assigned.
func (uc *BillingUseCase) IsBillingCurrent(ctx context.Context, member *domain.Member, today time.Time) (*bool, error) {
	next, err := uc.NextBillDate(ctx, member)
	if err != nil || next == nil {
		return nil, err
	}

	current := next.After(today)

	return &current, nil
}

// RunBillingCycle posts at most one billing cycle for the member: when a
// plan is assigned and the next bill date is not in the future, it debits
// the member's liability account, credits the plan's income account, and
// advances the billing anchor to the next bill date, all in one
// transaction. Returns (nil, nil) when there is nothing to do; callers
// catching up overdue members invoke it repeatedly until then.
func (uc *BillingUseCase) RunBillingCycle(ctx context.Context, memberID string, today time.Time) (*domain.Entry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	member, err := uc.memberRepo.GetByIDForUpdate(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}

	if !member.HasPlan() || member.AccountID == "" {
		return nil, nil
	}

	plan, err := uc.planRepo.GetByID(ctx, *member.PlanID)
	if err != nil {
		return nil, err
	}

	next := domain.AddMonths(member.LastBilled, plan.PeriodMonths)
	if next.After(today) {
		return nil, nil
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		DebitAccountID:  member.AccountID,
		CreditAccountID: plan.IncomeAccountID,
		Amount:          plan.Cost,
		Details:         fmt.Sprintf("%s dues through %s", plan.Name, next.Format("2006-01-02")),
		EffectiveDate:   next,
		CreatedAt:       now,
		ModifiedAt:      now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.memberRepo.AdvanceLastBilled(ctx, tx, member.ID, next, member.Version, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   member.ID,
		AggregateType: domain.AggregateTypeMember,
		EventType:     domain.EventTypeMemberBilled,
		Payload: map[string]any{
			"member_id":      member.ID,
			"plan_id":        plan.ID,
			"entry_id":       entry.ID,
			"amount":         plan.Cost.String(),
			"effective_date": next.Format("2006-01-02"),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// BillingRunReport summarizes a RunDueBilling pass.
type BillingRunReport struct {
	MembersSeen   int
	MembersBilled int
	EntriesPosted int
	Errors        map[string]error
}

// RunDueBilling runs billing for every member, catching up each overdue
// member one cycle at a time until current. One member's failure never
// stops the run; failures are collected in the report keyed by member id.
func (uc *BillingUseCase) RunDueBilling(ctx context.Context, today time.Time) (*BillingRunReport, error) {
	report := &BillingRunReport{Errors: make(map[string]error)}

	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		members, err := uc.memberRepo.List(ctx, pageSize, offset)
		if err != nil {
			return report, err
		}
		if len(members) == 0 {
			break
		}

		for _, member := range members {
			report.MembersSeen++

			posted, err := uc.catchUpMember(ctx, member.ID, today)
			if err != nil {
				report.Errors[member.ID] = err
				continue
			}

			if posted > 0 {
				report.MembersBilled++
				report.EntriesPosted += posted
			}
		}

		if len(members) < pageSize {
			break
		}
	}

	return report, nil
}

// catchUpMember bills one member until current, holding the per-member
// lock when a locker is configured.
func (uc *BillingUseCase) catchUpMember(ctx context.Context, memberID string, today time.Time) (int, error) {
	if uc.locker != nil {
		acquired, err := uc.locker.Acquire(ctx, memberID, BillingLockTTL)
		if err != nil {
			return 0, err
		}
		if !acquired {
			// Another run is already billing this member.
			return 0, nil
		}
		defer uc.locker.Release(ctx, memberID)
	}

	posted := 0
	for {
		entry, err := uc.RunBillingCycle(ctx, memberID, today)
		if err != nil {
			return posted, err
		}
		if entry == nil {
			return posted, nil
		}
		posted++
	}
}
