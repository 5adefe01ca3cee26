package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/adapter/http/dto"
	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	listFn       func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	balanceFn    func(ctx context.Context, accountID string) (decimal.Decimal, error)
	normalizedFn func(ctx context.Context, accountID string) (decimal.Decimal, error)
	statementFn  func(ctx context.Context, input usecase.AccountStatementInput) ([]*domain.Entry, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, accountID)
}

func (s *accountServiceStub) NormalizedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.normalizedFn(ctx, accountID)
}

func (s *accountServiceStub) AccountStatement(ctx context.Context, input usecase.AccountStatementInput) ([]*domain.Entry, error) {
	return s.statementFn(ctx, input)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:             "acc-1",
		GnucashAccount: "Assets:Bank",
		Class:          domain.AccountClassAsset,
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		GnucashAccount: "Assets:Bank",
		Class:          "asset",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.GnucashAccount != "Assets:Bank" || captured.Class != domain.AccountClassAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidClass(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidAccountClass
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		GnucashAccount: "Assets:Bank",
		Class:          "sideways",
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrUnknownAccount
		},
	})

	req := newRequestWithID(http.MethodGet, "/accounts/acc-nope", "acc-nope")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Balance(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		balanceFn: func(ctx context.Context, accountID string) (decimal.Decimal, error) {
			return decimal.RequireFromString("-40.00"), nil
		},
		normalizedFn: func(ctx context.Context, accountID string) (decimal.Decimal, error) {
			return decimal.RequireFromString("40.00"), nil
		},
	})

	req := newRequestWithID(http.MethodGet, "/accounts/acc-income/balance", "acc-income")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("-40.00")) {
		t.Fatalf("balance = %s", resp.Balance)
	}
	if !resp.Normalized.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("normalized = %s", resp.Normalized)
	}
}

func TestAccountHandler_Statement_PropagatesError(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		statementFn: func(ctx context.Context, input usecase.AccountStatementInput) ([]*domain.Entry, error) {
			return nil, errors.New("boom")
		},
	})

	req := newRequestWithID(http.MethodGet, "/accounts/acc-1/entries", "acc-1")
	rec := httptest.NewRecorder()

	handler.Statement(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

// newRequestWithID builds a request carrying a chi {id} URL parameter.
func newRequestWithID(method, target, id string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
