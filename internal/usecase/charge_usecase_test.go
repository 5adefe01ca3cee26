package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
	"github.com/iho/duesledger/internal/usecase/mocks"
)

type chargeFixture struct {
	uc          *usecase.ChargeUseCase
	chargeRepo  *mocks.MockChargeRepository
	memberRepo  *mocks.MockMemberRepository
	methodRepo  *mocks.MockPaymentMethodRepository
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
	outboxRepo  *mocks.MockOutboxRepository
	gateway     *mocks.MockPaymentGateway
}

func newChargeFixture() *chargeFixture {
	f := &chargeFixture{
		chargeRepo:  mocks.NewMockChargeRepository(),
		memberRepo:  mocks.NewMockMemberRepository(),
		methodRepo:  mocks.NewMockPaymentMethodRepository(),
		accountRepo: mocks.NewMockAccountRepository(),
		entryRepo:   mocks.NewMockEntryRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		gateway:     mocks.NewMockPaymentGateway(),
	}
	f.uc = usecase.NewChargeUseCase(
		mocks.NewMockTransactionManager(),
		f.chargeRepo,
		f.memberRepo,
		f.methodRepo,
		f.accountRepo,
		f.entryRepo,
		f.outboxRepo,
		f.gateway,
		mocks.NewMockIDGenerator(),
		"usd",
	)
	return f
}

func (f *chargeFixture) seedAccount(t *testing.T, id string, class domain.AccountClass) {
	t.Helper()
	err := f.accountRepo.Create(context.Background(), &domain.Account{
		ID:             id,
		GnucashAccount: "Test:" + id,
		Class:          class,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func (f *chargeFixture) seedMethod(t *testing.T, id string, feeAccountID *string) *domain.PaymentMethod {
	t.Helper()
	method := &domain.PaymentMethod{
		ID:               id,
		Name:             "Stripe",
		IsRecurring:      true,
		IsAutomated:      true,
		RevenueAccountID: "acc-revenue",
		FeeAccountID:     feeAccountID,
	}
	if err := f.methodRepo.Create(context.Background(), method); err != nil {
		t.Fatalf("seed method: %v", err)
	}
	return method
}

func (f *chargeFixture) seedChargedMember(t *testing.T, id, customerID string) *domain.Member {
	t.Helper()
	member := &domain.Member{
		ID:        id,
		Name:      "Alice",
		Email:     "alice@example.com",
		AccountID: "acc-" + id,
	}
	if customerID != "" {
		member.GatewayCustomerID = &customerID
	}
	if err := f.memberRepo.Create(context.Background(), member); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}

func (f *chargeFixture) seedCharge(t *testing.T, id string, state domain.ChargeState, externalID string) *domain.Charge {
	t.Helper()
	charge := &domain.Charge{
		ID:              id,
		MemberID:        "m-1",
		PaymentMethodID: "pm-1",
		ExternalID:      externalID,
		Amount:          decimal.RequireFromString("40.00"),
		Currency:        "usd",
		State:           state,
	}
	if err := f.chargeRepo.Create(context.Background(), charge); err != nil {
		t.Fatalf("seed charge: %v", err)
	}
	return charge
}

func TestChargeUseCase_CreatePaymentMethod(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreatePaymentMethodInput
		expectedErr error
	}{
		{
			name:  "happy path without fee account",
			input: usecase.CreatePaymentMethodInput{Name: "Cash", RevenueAccountID: "acc-revenue"},
		},
		{
			name: "happy path with fee account",
			input: usecase.CreatePaymentMethodInput{
				Name:             "Stripe",
				IsRecurring:      true,
				IsAutomated:      true,
				RevenueAccountID: "acc-revenue",
				FeeAccountID:     strPtr("acc-fees"),
			},
		},
		{
			name:        "revenue account must be asset",
			input:       usecase.CreatePaymentMethodInput{Name: "Bad", RevenueAccountID: "acc-income"},
			expectedErr: domain.ErrRevenueAccountClass,
		},
		{
			name: "fee account must be expense",
			input: usecase.CreatePaymentMethodInput{
				Name:             "Bad",
				RevenueAccountID: "acc-revenue",
				FeeAccountID:     strPtr("acc-income"),
			},
			expectedErr: domain.ErrFeeAccountClass,
		},
		{
			name:        "unknown revenue account",
			input:       usecase.CreatePaymentMethodInput{Name: "Bad", RevenueAccountID: "acc-nope"},
			expectedErr: domain.ErrUnknownAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChargeFixture()
			f.seedAccount(t, "acc-revenue", domain.AccountClassAsset)
			f.seedAccount(t, "acc-fees", domain.AccountClassExpense)
			f.seedAccount(t, "acc-income", domain.AccountClassIncome)

			method, err := f.uc.CreatePaymentMethod(context.Background(), tt.input)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if method.ID == "" {
				t.Error("expected generated id")
			}
		})
	}
}

func TestChargeUseCase_EnsureCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer once", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "")

		first, err := f.uc.EnsureCustomer(ctx, "m-1")
		if err != nil {
			t.Fatalf("EnsureCustomer: %v", err)
		}
		if first == "" {
			t.Fatal("expected a customer id")
		}

		second, err := f.uc.EnsureCustomer(ctx, "m-1")
		if err != nil {
			t.Fatalf("EnsureCustomer again: %v", err)
		}
		if second != first {
			t.Errorf("second call created a new customer: %s != %s", second, first)
		}
	})

	t.Run("gateway error propagates", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "")
		f.gateway.CreateCustomerFunc = func(ctx context.Context, description, email string) (string, error) {
			return "", domain.ErrGatewayUnavailable
		}

		if _, err := f.uc.EnsureCustomer(ctx, "m-1"); !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Errorf("expected ErrGatewayUnavailable, got %v", err)
		}

		member, _ := f.memberRepo.GetByID(ctx, "m-1")
		if member.GatewayCustomerID != nil {
			t.Error("failed provisioning must not store a customer id")
		}
	})
}

func TestChargeUseCase_SubmitCharge(t *testing.T) {
	ctx := context.Background()
	input := usecase.SubmitChargeInput{
		MemberID:        "m-1",
		PaymentMethodID: "pm-1",
		Amount:          "40.00",
	}

	t.Run("happy path", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)

		var gotReq usecase.GatewayChargeRequest
		f.gateway.CreateChargeFunc = func(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
			gotReq = req
			return &usecase.GatewayCharge{ID: "ch_123", Status: usecase.GatewayStatusPending}, nil
		}

		charge, err := f.uc.SubmitCharge(ctx, input)
		if err != nil {
			t.Fatalf("SubmitCharge: %v", err)
		}
		if charge.State != domain.ChargeStateSubmitted {
			t.Errorf("state = %s, want submitted", charge.State)
		}
		if charge.ExternalID != "ch_123" {
			t.Errorf("external id = %s", charge.ExternalID)
		}
		if gotReq.AmountMinor != 4000 {
			t.Errorf("minor units = %d, want 4000", gotReq.AmountMinor)
		}
		if gotReq.CustomerID != "cus_abc" {
			t.Errorf("customer = %s", gotReq.CustomerID)
		}

		events := f.outboxRepo.Events()
		if len(events) != 1 || events[0].EventType != domain.EventTypeChargeSubmitted {
			t.Errorf("expected one %s event, got %v", domain.EventTypeChargeSubmitted, events)
		}
	})

	t.Run("rejected charge fails immediately", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)
		f.gateway.CreateChargeFunc = func(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
			return nil, domain.ErrGatewayRejected
		}

		charge, err := f.uc.SubmitCharge(ctx, input)
		if !errors.Is(err, domain.ErrGatewayRejected) {
			t.Fatalf("expected ErrGatewayRejected, got %v", err)
		}
		stored, _ := f.chargeRepo.GetByID(ctx, charge.ID)
		if stored.State != domain.ChargeStateFailed {
			t.Errorf("state = %s, want failed", stored.State)
		}
		if len(f.entryRepo.Entries()) != 0 {
			t.Error("failed charge must not produce entries")
		}
	})

	t.Run("unavailable gateway leaves charge unprocessed", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)
		f.gateway.CreateChargeFunc = func(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
			return nil, domain.ErrGatewayUnavailable
		}

		charge, err := f.uc.SubmitCharge(ctx, input)
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
		stored, _ := f.chargeRepo.GetByID(ctx, charge.ID)
		if stored.State != domain.ChargeStateUnprocessed {
			t.Errorf("state = %s, want unprocessed for retry", stored.State)
		}
	})

	t.Run("member without customer id", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "")
		f.seedMethod(t, "pm-1", nil)

		if _, err := f.uc.SubmitCharge(ctx, input); !errors.Is(err, domain.ErrNoGatewayCustomer) {
			t.Errorf("expected ErrNoGatewayCustomer, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)

		bad := input
		bad.Amount = "0"
		if _, err := f.uc.SubmitCharge(ctx, bad); !errors.Is(err, domain.ErrNonPositiveAmount) {
			t.Errorf("expected ErrNonPositiveAmount, got %v", err)
		}
	})
}

func TestChargeUseCase_SyncCharge(t *testing.T) {
	ctx := context.Background()

	t.Run("pending stays submitted", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)
		f.seedCharge(t, "ch-1", domain.ChargeStateSubmitted, "ch_123")

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateSubmitted {
			t.Errorf("state = %s, want submitted", charge.State)
		}
	})

	t.Run("succeeded charge settles with fee", func(t *testing.T) {
		f := newChargeFixture()
		f.seedAccount(t, "acc-revenue", domain.AccountClassAsset)
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", strPtr("acc-fees"))
		f.seedCharge(t, "ch-1", domain.ChargeStateSubmitted, "ch_123")

		f.gateway.RetrieveChargeFunc = func(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
			return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusSucceeded}, nil
		}
		f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
			return []usecase.GatewaySettlement{
				{GrossMinor: 4000, FeeMinor: 146, NetMinor: 3854},
			}, nil
		}

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateCompleted {
			t.Fatalf("state = %s, want completed", charge.State)
		}

		entries := f.entryRepo.Entries()
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want gross + fee", len(entries))
		}
		var gross, fee *domain.Entry
		for _, e := range entries {
			if e.DebitAccountID == "acc-revenue" {
				gross = e
			}
			if e.DebitAccountID == "acc-fees" {
				fee = e
			}
		}
		if gross == nil || !gross.Amount.Equal(decimal.RequireFromString("40")) {
			t.Errorf("bad gross entry: %+v", gross)
		}
		if gross != nil && gross.CreditAccountID != "acc-m-1" {
			t.Errorf("gross credit = %s, want member account", gross.CreditAccountID)
		}
		if fee == nil || !fee.Amount.Equal(decimal.RequireFromString("1.46")) {
			t.Errorf("bad fee entry: %+v", fee)
		}
		if fee != nil && fee.CreditAccountID != "acc-revenue" {
			t.Errorf("fee credit = %s, want revenue account", fee.CreditAccountID)
		}

		stored, _ := f.chargeRepo.GetByID(ctx, "ch-1")
		if len(stored.EntryIDs) != 2 {
			t.Errorf("charge entry ids = %d, want 2", len(stored.EntryIDs))
		}

		events := f.outboxRepo.Events()
		if len(events) != 1 || events[0].EventType != domain.EventTypeChargeCompleted {
			t.Errorf("expected one %s event, got %v", domain.EventTypeChargeCompleted, events)
		}
	})

	t.Run("zero fee posts gross only", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", strPtr("acc-fees"))
		f.seedCharge(t, "ch-1", domain.ChargeStateSuccessful, "ch_123")

		f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
			return []usecase.GatewaySettlement{{GrossMinor: 4000, FeeMinor: 0, NetMinor: 4000}}, nil
		}

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateCompleted {
			t.Fatalf("state = %s, want completed", charge.State)
		}
		if len(f.entryRepo.Entries()) != 1 {
			t.Errorf("entries = %d, want gross only", len(f.entryRepo.Entries()))
		}
	})

	t.Run("multiple settlement fragments", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", strPtr("acc-fees"))
		f.seedCharge(t, "ch-1", domain.ChargeStateSuccessful, "ch_123")

		f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
			return []usecase.GatewaySettlement{
				{GrossMinor: 2000, FeeMinor: 88, NetMinor: 1912},
				{GrossMinor: 2000, FeeMinor: 58, NetMinor: 1942},
			}, nil
		}

		if _, err := f.uc.SyncCharge(ctx, "ch-1"); err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if len(f.entryRepo.Entries()) != 4 {
			t.Errorf("entries = %d, want 2 gross + 2 fee", len(f.entryRepo.Entries()))
		}
	})

	t.Run("failed status never posts entries", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", nil)
		f.seedCharge(t, "ch-1", domain.ChargeStateSubmitted, "ch_123")

		f.gateway.RetrieveChargeFunc = func(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
			return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusFailed}, nil
		}

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateFailed {
			t.Errorf("state = %s, want failed", charge.State)
		}
		if len(f.entryRepo.Entries()) != 0 {
			t.Error("failed charge must never produce entries")
		}
		events := f.outboxRepo.Events()
		if len(events) != 1 || events[0].EventType != domain.EventTypeChargeFailed {
			t.Errorf("expected one %s event, got %v", domain.EventTypeChargeFailed, events)
		}
	})

	t.Run("re-sync of completed charge is a no-op", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", strPtr("acc-fees"))
		f.seedCharge(t, "ch-1", domain.ChargeStateSuccessful, "ch_123")

		f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
			return []usecase.GatewaySettlement{{GrossMinor: 4000, FeeMinor: 146, NetMinor: 3854}}, nil
		}

		if _, err := f.uc.SyncCharge(ctx, "ch-1"); err != nil {
			t.Fatalf("first sync: %v", err)
		}
		if _, err := f.uc.SyncCharge(ctx, "ch-1"); err != nil {
			t.Fatalf("second sync: %v", err)
		}
		if len(f.entryRepo.Entries()) != 2 {
			t.Errorf("entries = %d, re-sync must not duplicate postings", len(f.entryRepo.Entries()))
		}
	})

	t.Run("concurrent settle loses lock race cleanly", func(t *testing.T) {
		f := newChargeFixture()
		f.seedChargedMember(t, "m-1", "cus_abc")
		f.seedMethod(t, "pm-1", strPtr("acc-fees"))
		f.seedCharge(t, "ch-1", domain.ChargeStateSuccessful, "ch_123")

		f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
			return []usecase.GatewaySettlement{{GrossMinor: 4000, FeeMinor: 146, NetMinor: 3854}}, nil
		}
		// The row comes back already completed under the lock.
		f.chargeRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Charge, error) {
			return &domain.Charge{ID: id, State: domain.ChargeStateCompleted}, nil
		}

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateCompleted {
			t.Errorf("state = %s", charge.State)
		}
		if len(f.entryRepo.Entries()) != 0 {
			t.Error("losing the race must not post entries")
		}
	})

	t.Run("unprocessed charge is a no-op", func(t *testing.T) {
		f := newChargeFixture()
		f.seedCharge(t, "ch-1", domain.ChargeStateUnprocessed, "")

		charge, err := f.uc.SyncCharge(ctx, "ch-1")
		if err != nil {
			t.Fatalf("SyncCharge: %v", err)
		}
		if charge.State != domain.ChargeStateUnprocessed {
			t.Errorf("state = %s", charge.State)
		}
	})
}

func TestChargeUseCase_SyncPendingCharges(t *testing.T) {
	f := newChargeFixture()
	f.seedChargedMember(t, "m-1", "cus_abc")
	f.seedMethod(t, "pm-1", nil)
	f.seedCharge(t, "ch-done", domain.ChargeStateCompleted, "ch_1")
	f.seedCharge(t, "ch-pending", domain.ChargeStateSubmitted, "ch_2")
	f.seedCharge(t, "ch-winner", domain.ChargeStateSubmitted, "ch_3")
	f.seedCharge(t, "ch-loser", domain.ChargeStateSubmitted, "ch_4")

	f.gateway.RetrieveChargeFunc = func(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
		switch externalID {
		case "ch_3":
			return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusSucceeded}, nil
		case "ch_4":
			return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusFailed}, nil
		default:
			return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusPending}, nil
		}
	}
	f.gateway.ListSettlementsFunc = func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
		return []usecase.GatewaySettlement{{GrossMinor: 4000, FeeMinor: 0, NetMinor: 4000}}, nil
	}

	report, err := f.uc.SyncPendingCharges(context.Background())
	if err != nil {
		t.Fatalf("SyncPendingCharges: %v", err)
	}
	if report.ChargesSeen != 3 {
		t.Errorf("charges seen = %d, want 3 (terminal excluded)", report.ChargesSeen)
	}
	if report.Completed != 1 {
		t.Errorf("completed = %d, want 1", report.Completed)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
}
