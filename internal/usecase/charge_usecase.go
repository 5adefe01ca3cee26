package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
)

// ChargeUseCase drives charges through the gateway lifecycle and posts
// the resulting ledger entries exactly once.
type ChargeUseCase struct {
	txManager  TransactionManager
	chargeRepo ChargeRepository
	memberRepo MemberRepository
	methodRepo PaymentMethodRepository
	accountRepo AccountRepository
	entryRepo  EntryRepository
	outboxRepo OutboxRepository
	gateway    PaymentGateway
	idGen      IDGenerator
	currency   string
	retrier    Retrier
}

// NewChargeUseCase creates a new ChargeUseCase. currency is the default
// currency code for submitted charges.
func NewChargeUseCase(
	txManager TransactionManager,
	chargeRepo ChargeRepository,
	memberRepo MemberRepository,
	methodRepo PaymentMethodRepository,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	gateway PaymentGateway,
	idGen IDGenerator,
	currency string,
) *ChargeUseCase {
	return &ChargeUseCase{
		txManager:   txManager,
		chargeRepo:  chargeRepo,
		memberRepo:  memberRepo,
		methodRepo:  methodRepo,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		gateway:     gateway,
		idGen:       idGen,
		currency:    currency,
	}
}

// WithRetrier makes settlement posting retry on transient database
// errors. Settlement takes a row lock, so it can deadlock against a
// concurrent reconciler and is safe to re-run.
func (uc *ChargeUseCase) WithRetrier(retrier Retrier) *ChargeUseCase {
	uc.retrier = retrier
	return uc
}

// CreatePaymentMethodInput represents input for configuring a payment
// method.
type CreatePaymentMethodInput struct {
	Name             string
	IsRecurring      bool
	IsAutomated      bool
	RevenueAccountID string
	FeeAccountID     *string
}

// CreatePaymentMethod configures a payment method. The revenue account
// must be asset class and the fee account, when given, expense class.
func (uc *ChargeUseCase) CreatePaymentMethod(ctx context.Context, input CreatePaymentMethodInput) (*domain.PaymentMethod, error) {
	revenue, err := uc.accountRepo.GetByID(ctx, input.RevenueAccountID)
	if err != nil {
		return nil, err
	}
	if revenue.Class != domain.AccountClassAsset {
		return nil, domain.ErrRevenueAccountClass
	}

	if input.FeeAccountID != nil {
		fee, err := uc.accountRepo.GetByID(ctx, *input.FeeAccountID)
		if err != nil {
			return nil, err
		}
		if fee.Class != domain.AccountClassExpense {
			return nil, domain.ErrFeeAccountClass
		}
	}

	method := &domain.PaymentMethod{
		ID:               uc.idGen.Generate(),
		Name:             input.Name,
		IsRecurring:      input.IsRecurring,
		IsAutomated:      input.IsAutomated,
		RevenueAccountID: input.RevenueAccountID,
		FeeAccountID:     input.FeeAccountID,
		CreatedAt:        time.Now().UTC(),
	}

	if err := uc.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}

	return method, nil
}

// ListPaymentMethods lists payment methods with pagination.
func (uc *ChargeUseCase) ListPaymentMethods(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.methodRepo.List(ctx, limit, offset)
}

// EnsureCustomer provisions a gateway customer for the member if one does
// not exist yet, and returns the customer id.
func (uc *ChargeUseCase) EnsureCustomer(ctx context.Context, memberID string) (string, error) {
	member, err := uc.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return "", err
	}

	if member.GatewayCustomerID != nil && *member.GatewayCustomerID != "" {
		return *member.GatewayCustomerID, nil
	}

	customerID, err := uc.gateway.CreateCustomer(ctx, fmt.Sprintf("%s via duesledger", member.Name), member.Email)
	if err != nil {
		return "", err
	}

	if err := uc.memberRepo.UpdateGatewayCustomer(ctx, member.ID, customerID, time.Now().UTC()); err != nil {
		return "", err
	}

	return customerID, nil
}

// SubmitChargeInput represents input for submitting a charge.
type SubmitChargeInput struct {
	MemberID        string
	PaymentMethodID string
	Amount          string
	Description     string
}

// SubmitCharge records a charge and submits it to the gateway. The charge
// row is persisted as unprocessed before the gateway call so a crash mid
// submission leaves a visible, retryable record. Gateway rejection moves
// the charge straight to failed; gateway unavailability leaves it
// unprocessed for a later retry.
func (uc *ChargeUseCase) SubmitCharge(ctx context.Context, input SubmitChargeInput) (*domain.Charge, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	member, err := uc.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.GatewayCustomerID == nil || *member.GatewayCustomerID == "" {
		return nil, domain.ErrNoGatewayCustomer
	}

	if _, err := uc.methodRepo.GetByID(ctx, input.PaymentMethodID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	charge := &domain.Charge{
		ID:              uc.idGen.Generate(),
		MemberID:        member.ID,
		PaymentMethodID: input.PaymentMethodID,
		Amount:          amount,
		Currency:        uc.currency,
		State:           domain.ChargeStateUnprocessed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := charge.Validate(); err != nil {
		return nil, err
	}

	if err := uc.chargeRepo.Create(ctx, charge); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Membership dues for %s", member.Name)
	}

	gwCharge, err := uc.gateway.CreateCharge(ctx, GatewayChargeRequest{
		AmountMinor: amount.Mul(decimal.NewFromInt(MinorUnitsPerMajor)).IntPart(),
		Currency:    charge.Currency,
		CustomerID:  *member.GatewayCustomerID,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGatewayRejected) {
			if ferr := uc.markFailed(ctx, charge); ferr != nil {
				return charge, ferr
			}
			charge.State = domain.ChargeStateFailed
		}
		return charge, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return charge, err
	}
	defer tx.Rollback(ctx)

	if err := uc.chargeRepo.UpdateSubmitted(ctx, tx, charge.ID, gwCharge.ID, now); err != nil {
		return charge, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   charge.ID,
		AggregateType: domain.AggregateTypeCharge,
		EventType:     domain.EventTypeChargeSubmitted,
		Payload: map[string]any{
			"charge_id":   charge.ID,
			"member_id":   charge.MemberID,
			"external_id": gwCharge.ID,
			"amount":      charge.Amount.String(),
			"currency":    charge.Currency,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return charge, err
	}

	if err := tx.Commit(ctx); err != nil {
		return charge, err
	}

	charge.ExternalID = gwCharge.ID
	charge.State = domain.ChargeStateSubmitted

	return charge, nil
}

// GetCharge retrieves a charge by ID.
func (uc *ChargeUseCase) GetCharge(ctx context.Context, id string) (*domain.Charge, error) {
	return uc.chargeRepo.GetByID(ctx, id)
}

// ListChargesByMember lists a member's charges with pagination.
func (uc *ChargeUseCase) ListChargesByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.chargeRepo.ListByMember(ctx, memberID, limit, offset)
}

// SyncCharge advances the charge state machine one step as far as the
// gateway allows. Submitted charges are polled; successful charges have
// their settlement fragments posted to the ledger and move to completed.
// Terminal charges are a no-op, so speculative or scheduled re-invocation
// is always safe.
func (uc *ChargeUseCase) SyncCharge(ctx context.Context, chargeID string) (*domain.Charge, error) {
	charge, err := uc.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}

	if charge.State.Terminal() || charge.State == domain.ChargeStateUnprocessed {
		return charge, nil
	}

	if charge.State == domain.ChargeStateSubmitted {
		charge, err = uc.pollSubmitted(ctx, charge)
		if err != nil {
			return charge, err
		}
	}

	if charge.State == domain.ChargeStateSuccessful {
		settle := func() error {
			var serr error
			charge, serr = uc.settleSuccessful(ctx, charge)
			return serr
		}
		if uc.retrier != nil {
			err = uc.retrier.Retry(ctx, settle)
		} else {
			err = settle()
		}
		if err != nil {
			return charge, err
		}
	}

	return charge, nil
}

// pollSubmitted asks the gateway for the charge's status. A status that
// is neither succeeded nor failed leaves the charge submitted; polling
// tolerates indefinite "not yet decided" responses.
func (uc *ChargeUseCase) pollSubmitted(ctx context.Context, charge *domain.Charge) (*domain.Charge, error) {
	gwCharge, err := uc.gateway.RetrieveCharge(ctx, charge.ExternalID)
	if err != nil {
		return charge, err
	}

	switch gwCharge.Status {
	case GatewayStatusSucceeded:
		now := time.Now().UTC()
		if err := uc.chargeRepo.UpdateState(ctx, nil, charge.ID, domain.ChargeStateSuccessful, now); err != nil {
			return charge, err
		}
		charge.State = domain.ChargeStateSuccessful
		charge.UpdatedAt = now
	case GatewayStatusFailed:
		if err := uc.markFailed(ctx, charge); err != nil {
			return charge, err
		}
		charge.State = domain.ChargeStateFailed
	}

	return charge, nil
}

// settleSuccessful posts gross and fee entries for every settlement
// fragment and completes the charge, all in one transaction. The row lock
// plus the state recheck make the posting exactly-once under concurrent
// reconciliation.
func (uc *ChargeUseCase) settleSuccessful(ctx context.Context, charge *domain.Charge) (*domain.Charge, error) {
	member, err := uc.memberRepo.GetByID(ctx, charge.MemberID)
	if err != nil {
		return charge, err
	}

	method, err := uc.methodRepo.GetByID(ctx, charge.PaymentMethodID)
	if err != nil {
		return charge, err
	}

	settlements, err := uc.gateway.ListSettlements(ctx, charge.ExternalID)
	if err != nil {
		return charge, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return charge, err
	}
	defer tx.Rollback(ctx)

	locked, err := uc.chargeRepo.GetByIDForUpdate(ctx, tx, charge.ID)
	if err != nil {
		return charge, err
	}
	if locked.State != domain.ChargeStateSuccessful {
		// Another reconciler already completed (or failed) this charge.
		return locked, nil
	}

	now := time.Now().UTC()
	today := domain.Date(now.Year(), now.Month(), now.Day())
	entryIDs := make([]string, 0, 2*len(settlements))

	for _, s := range settlements {
		gross := &domain.Entry{
			ID:              uc.idGen.Generate(),
			DebitAccountID:  method.RevenueAccountID,
			CreditAccountID: member.AccountID,
			Amount:          minorToDecimal(s.GrossMinor),
			Details:         fmt.Sprintf("%s txn %s", method.Name, charge.ExternalID),
			EffectiveDate:   today,
			CreatedAt:       now,
			ModifiedAt:      now,
		}
		if err := gross.Validate(); err != nil {
			return charge, err
		}
		if err := uc.entryRepo.Create(ctx, tx, gross); err != nil {
			return charge, err
		}
		if err := uc.chargeRepo.AddEntry(ctx, tx, charge.ID, gross.ID); err != nil {
			return charge, err
		}
		entryIDs = append(entryIDs, gross.ID)

		if s.FeeMinor > 0 && method.HasFeeAccount() {
			fee := &domain.Entry{
				ID:              uc.idGen.Generate(),
				DebitAccountID:  *method.FeeAccountID,
				CreditAccountID: method.RevenueAccountID,
				Amount:          minorToDecimal(s.FeeMinor),
				Details:         fmt.Sprintf("%s txn %s fees", method.Name, charge.ExternalID),
				EffectiveDate:   today,
				CreatedAt:       now,
				ModifiedAt:      now,
			}
			if err := fee.Validate(); err != nil {
				return charge, err
			}
			if err := uc.entryRepo.Create(ctx, tx, fee); err != nil {
				return charge, err
			}
			if err := uc.chargeRepo.AddEntry(ctx, tx, charge.ID, fee.ID); err != nil {
				return charge, err
			}
			entryIDs = append(entryIDs, fee.ID)
		}
	}

	if err := uc.chargeRepo.UpdateState(ctx, tx, charge.ID, domain.ChargeStateCompleted, now); err != nil {
		return charge, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   charge.ID,
		AggregateType: domain.AggregateTypeCharge,
		EventType:     domain.EventTypeChargeCompleted,
		Payload: map[string]any{
			"charge_id":   charge.ID,
			"member_id":   charge.MemberID,
			"external_id": charge.ExternalID,
			"entry_ids":   entryIDs,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return charge, err
	}

	if err := tx.Commit(ctx); err != nil {
		return charge, err
	}

	charge.State = domain.ChargeStateCompleted
	charge.EntryIDs = append(charge.EntryIDs, entryIDs...)
	charge.UpdatedAt = now

	return charge, nil
}

// markFailed moves a charge to failed and records the event. Failed is
// terminal and never produces entries.
func (uc *ChargeUseCase) markFailed(ctx context.Context, charge *domain.Charge) error {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.chargeRepo.UpdateState(ctx, tx, charge.ID, domain.ChargeStateFailed, now); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   charge.ID,
		AggregateType: domain.AggregateTypeCharge,
		EventType:     domain.EventTypeChargeFailed,
		Payload: map[string]any{
			"charge_id":   charge.ID,
			"member_id":   charge.MemberID,
			"external_id": charge.ExternalID,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ChargeSyncReport summarizes a SyncPendingCharges pass.
type ChargeSyncReport struct {
	ChargesSeen int
	Completed   int
	Failed      int
	Errors      map[string]error
}

// SyncPendingCharges reconciles every non-terminal submitted or
// successful charge. Transient gateway failures are recorded and the
// charge stays where it is for the next pass.
func (uc *ChargeUseCase) SyncPendingCharges(ctx context.Context) (*ChargeSyncReport, error) {
	report := &ChargeSyncReport{Errors: make(map[string]error)}

	states := []domain.ChargeState{domain.ChargeStateSubmitted, domain.ChargeStateSuccessful}

	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		charges, err := uc.chargeRepo.ListByStates(ctx, states, pageSize, offset)
		if err != nil {
			return report, err
		}
		if len(charges) == 0 {
			break
		}

		for _, charge := range charges {
			report.ChargesSeen++

			synced, err := uc.SyncCharge(ctx, charge.ID)
			if err != nil {
				report.Errors[charge.ID] = err
				continue
			}

			switch synced.State {
			case domain.ChargeStateCompleted:
				report.Completed++
			case domain.ChargeStateFailed:
				report.Failed++
			}
		}

		if len(charges) < pageSize {
			break
		}
	}

	return report, nil
}
