package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
)

// LedgerUseCase handles ledger core business logic: account creation,
// entry posting, and derived balances.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	GnucashAccount string
	Class          domain.AccountClass
}

// CreateAccount creates a new ledger account. The class is immutable
// afterwards; there is no update operation.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		GnucashAccount: input.GnucashAccount,
		Class:          input.Class,
		CreatedAt:      time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// PostEntryInput represents input for posting an entry.
type PostEntryInput struct {
	DebitAccountID  string
	CreditAccountID string
	Amount          decimal.Decimal
	Details         string
	EffectiveDate   time.Time
}

// PostEntry appends an immutable entry transferring Amount from the
// debit account to the credit account. It never mutates account state;
// balances are derived, so concurrent postings commute.
func (uc *LedgerUseCase) PostEntry(ctx context.Context, input PostEntryInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	ids := []string{input.DebitAccountID, input.CreditAccountID}
	if input.DebitAccountID == input.CreditAccountID {
		ids = ids[:1]
	}

	accounts, err := uc.accountRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrUnknownAccount
	}

	now := time.Now().UTC()
	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		DebitAccountID:  input.DebitAccountID,
		CreditAccountID: input.CreditAccountID,
		Amount:          input.Amount,
		Details:         input.Details,
		EffectiveDate:   input.EffectiveDate,
		CreatedAt:       now,
		ModifiedAt:      now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload: map[string]any{
			"entry_id":          entry.ID,
			"debit_account_id":  entry.DebitAccountID,
			"credit_account_id": entry.CreditAccountID,
			"amount":            entry.Amount.String(),
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

// GetEntry retrieves an entry by ID.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// AccountBalance returns the raw balance of an account: the sum of
// entries debiting it minus the sum of entries crediting it. An account
// with no entries has a balance of exactly zero.
func (uc *LedgerUseCase) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	return uc.entryRepo.AccountBalance(ctx, accountID)
}

// NormalizedBalance returns the balance as a human reads it: the raw
// balance for debit-normal classes, its negation for credit-normal ones.
func (uc *LedgerUseCase) NormalizedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := uc.entryRepo.AccountBalance(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if account.Class.DebitNormal() {
		return balance, nil
	}

	return balance.Neg(), nil
}

// AccountStatementInput represents input for a statement-of-account view.
type AccountStatementInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// AccountStatement lists all entries touching an account, ordered by
// effective date then creation time, giving a reproducible statement.
func (uc *LedgerUseCase) AccountStatement(ctx context.Context, input AccountStatementInput) ([]*domain.Entry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// CheckConsistency verifies that the sum of raw balances over every
// account is exactly zero. Any other value means money was created or
// destroyed and is a programming error, never auto-corrected.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) error {
	total, err := uc.entryRepo.TotalBalance(ctx)
	if err != nil {
		return err
	}

	if !total.IsZero() {
		return fmt.Errorf("ledger inconsistency detected: total balance is %s, want 0", total.String())
	}

	return nil
}
