package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
	"github.com/iho/duesledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc   func(ctx context.Context, account *domain.Account) error
	GetByIDFunc  func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsFunc func(ctx context.Context, ids []string) ([]*domain.Account, error)
	ListFunc     func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrUnknownAccount
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockEntryRepository is a mock implementation of EntryRepository. The
// default behavior derives balances from the stored entries the same way
// the SQL aggregates do.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Entry, error)
	ListByAccountFunc  func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	AccountBalanceFunc func(ctx context.Context, accountID string) (decimal.Decimal, error)
	TotalBalanceFunc   func(ctx context.Context) (decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.DebitAccountID == accountID || e.CreditAccountID == accountID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockEntryRepository) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.AccountBalanceFunc != nil {
		return m.AccountBalanceFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	balance := decimal.Zero
	for _, e := range m.entries {
		if e.DebitAccountID == accountID {
			balance = balance.Add(e.Amount)
		}
		if e.CreditAccountID == accountID {
			balance = balance.Sub(e.Amount)
		}
	}
	return balance, nil
}

func (m *MockEntryRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	if m.TotalBalanceFunc != nil {
		return m.TotalBalanceFunc(ctx)
	}
	// Every entry contributes +amount and -amount, so the honest default
	// is always zero; override TotalBalanceFunc to simulate corruption.
	return decimal.Zero, nil
}

// Entries returns a snapshot of all stored entries for assertions.
func (m *MockEntryRepository) Entries() []*domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*domain.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	return entries
}

// MockMemberRepository is a mock implementation of MemberRepository.
type MockMemberRepository struct {
	mu      sync.RWMutex
	members map[string]*domain.Member

	CreateFunc                func(ctx context.Context, member *domain.Member) error
	GetByIDFunc               func(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdateFunc      func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error)
	ListFunc                  func(ctx context.Context, limit, offset int) ([]*domain.Member, error)
	UpdatePlanFunc            func(ctx context.Context, id string, planID *string, updatedAt time.Time) error
	UpdateGatewayCustomerFunc func(ctx context.Context, id, customerID string, updatedAt time.Time) error
	AdvanceLastBilledFunc     func(ctx context.Context, tx usecase.Transaction, id string, lastBilled time.Time, version int64, updatedAt time.Time) error
}

func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{
		members: make(map[string]*domain.Member),
	}
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
	return nil
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, domain.ErrMemberNotFound
}

func (m *MockMemberRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Member, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockMemberRepository) List(ctx context.Context, limit, offset int) ([]*domain.Member, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []*domain.Member
	for _, member := range m.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	if offset >= len(members) {
		return nil, nil
	}
	members = members[offset:]
	if limit > 0 && limit < len(members) {
		members = members[:limit]
	}
	return members, nil
}

func (m *MockMemberRepository) UpdatePlan(ctx context.Context, id string, planID *string, updatedAt time.Time) error {
	if m.UpdatePlanFunc != nil {
		return m.UpdatePlanFunc(ctx, id, planID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	member.PlanID = planID
	member.UpdatedAt = updatedAt
	return nil
}

func (m *MockMemberRepository) UpdateGatewayCustomer(ctx context.Context, id, customerID string, updatedAt time.Time) error {
	if m.UpdateGatewayCustomerFunc != nil {
		return m.UpdateGatewayCustomerFunc(ctx, id, customerID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	member.GatewayCustomerID = &customerID
	member.UpdatedAt = updatedAt
	return nil
}

func (m *MockMemberRepository) AdvanceLastBilled(ctx context.Context, tx usecase.Transaction, id string, lastBilled time.Time, version int64, updatedAt time.Time) error {
	if m.AdvanceLastBilledFunc != nil {
		return m.AdvanceLastBilledFunc(ctx, tx, id, lastBilled, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	if member.Version != version {
		return domain.ErrStaleBillingState
	}
	member.LastBilled = lastBilled
	member.Version++
	member.UpdatedAt = updatedAt
	return nil
}

// MockPlanRepository is a mock implementation of PlanRepository.
type MockPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*domain.MembershipPlan

	CreateFunc  func(ctx context.Context, plan *domain.MembershipPlan) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.MembershipPlan, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error)
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		plans: make(map[string]*domain.MembershipPlan),
	}
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.MembershipPlan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, plan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
	return nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id string) (*domain.MembershipPlan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if plan, ok := m.plans[id]; ok {
		return plan, nil
	}
	return nil, domain.ErrPlanNotFound
}

func (m *MockPlanRepository) List(ctx context.Context, limit, offset int) ([]*domain.MembershipPlan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var plans []*domain.MembershipPlan
	for _, plan := range m.plans {
		plans = append(plans, plan)
	}
	return plans, nil
}

// MockPaymentMethodRepository is a mock implementation of PaymentMethodRepository.
type MockPaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]*domain.PaymentMethod

	CreateFunc  func(ctx context.Context, method *domain.PaymentMethod) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.PaymentMethod, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error)
}

func NewMockPaymentMethodRepository() *MockPaymentMethodRepository {
	return &MockPaymentMethodRepository{
		methods: make(map[string]*domain.PaymentMethod),
	}
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, method)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[method.ID] = method
	return nil
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if method, ok := m.methods[id]; ok {
		return method, nil
	}
	return nil, domain.ErrPaymentMethodNotFound
}

func (m *MockPaymentMethodRepository) List(ctx context.Context, limit, offset int) ([]*domain.PaymentMethod, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var methods []*domain.PaymentMethod
	for _, method := range m.methods {
		methods = append(methods, method)
	}
	return methods, nil
}

// MockChargeRepository is a mock implementation of ChargeRepository.
type MockChargeRepository struct {
	mu      sync.RWMutex
	charges map[string]*domain.Charge

	CreateFunc           func(ctx context.Context, charge *domain.Charge) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Charge, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Charge, error)
	ListByMemberFunc     func(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error)
	ListByStatesFunc     func(ctx context.Context, states []domain.ChargeState, limit, offset int) ([]*domain.Charge, error)
	UpdateSubmittedFunc  func(ctx context.Context, tx usecase.Transaction, id, externalID string, updatedAt time.Time) error
	UpdateStateFunc      func(ctx context.Context, tx usecase.Transaction, id string, state domain.ChargeState, updatedAt time.Time) error
	AddEntryFunc         func(ctx context.Context, tx usecase.Transaction, chargeID, entryID string) error
}

func NewMockChargeRepository() *MockChargeRepository {
	return &MockChargeRepository{
		charges: make(map[string]*domain.Charge),
	}
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *charge
	m.charges[charge.ID] = &c
	return nil
}

func (m *MockChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if charge, ok := m.charges[id]; ok {
		c := *charge
		return &c, nil
	}
	return nil, domain.ErrChargeNotFound
}

func (m *MockChargeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Charge, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockChargeRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*domain.Charge, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, memberID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var charges []*domain.Charge
	for _, charge := range m.charges {
		if charge.MemberID == memberID {
			c := *charge
			charges = append(charges, &c)
		}
	}
	return charges, nil
}

func (m *MockChargeRepository) ListByStates(ctx context.Context, states []domain.ChargeState, limit, offset int) ([]*domain.Charge, error) {
	if m.ListByStatesFunc != nil {
		return m.ListByStatesFunc(ctx, states, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[domain.ChargeState]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}
	var charges []*domain.Charge
	for _, charge := range m.charges {
		if wanted[charge.State] {
			c := *charge
			charges = append(charges, &c)
		}
	}
	sort.Slice(charges, func(i, j int) bool { return charges[i].ID < charges[j].ID })
	if offset >= len(charges) {
		return nil, nil
	}
	charges = charges[offset:]
	if limit > 0 && limit < len(charges) {
		charges = charges[:limit]
	}
	return charges, nil
}

func (m *MockChargeRepository) UpdateSubmitted(ctx context.Context, tx usecase.Transaction, id, externalID string, updatedAt time.Time) error {
	if m.UpdateSubmittedFunc != nil {
		return m.UpdateSubmittedFunc(ctx, tx, id, externalID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.charges[id]
	if !ok {
		return domain.ErrChargeNotFound
	}
	charge.ExternalID = externalID
	charge.State = domain.ChargeStateSubmitted
	charge.UpdatedAt = updatedAt
	return nil
}

func (m *MockChargeRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, state domain.ChargeState, updatedAt time.Time) error {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, tx, id, state, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.charges[id]
	if !ok {
		return domain.ErrChargeNotFound
	}
	charge.State = state
	charge.UpdatedAt = updatedAt
	return nil
}

func (m *MockChargeRepository) AddEntry(ctx context.Context, tx usecase.Transaction, chargeID, entryID string) error {
	if m.AddEntryFunc != nil {
		return m.AddEntryFunc(ctx, tx, chargeID, entryID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.charges[chargeID]
	if !ok {
		return domain.ErrChargeNotFound
	}
	charge.EntryIDs = append(charge.EntryIDs, entryID)
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
			if limit > 0 && len(events) == limit {
				break
			}
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of all recorded events for assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.OutboxEvent, len(m.events))
	copy(events, m.events)
	return events
}

// MockPaymentGateway is a mock implementation of PaymentGateway.
type MockPaymentGateway struct {
	mu sync.Mutex

	CreateCustomerFunc  func(ctx context.Context, description, email string) (string, error)
	CreateChargeFunc    func(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error)
	RetrieveChargeFunc  func(ctx context.Context, externalID string) (*usecase.GatewayCharge, error)
	ListSettlementsFunc func(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error)

	customers int
	charges   int
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateCustomer(ctx context.Context, description, email string) (string, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, description, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers++
	return fmt.Sprintf("cus_%03d", m.customers), nil
}

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req usecase.GatewayChargeRequest) (*usecase.GatewayCharge, error) {
	if m.CreateChargeFunc != nil {
		return m.CreateChargeFunc(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges++
	return &usecase.GatewayCharge{
		ID:     fmt.Sprintf("ch_%03d", m.charges),
		Status: usecase.GatewayStatusPending,
	}, nil
}

func (m *MockPaymentGateway) RetrieveCharge(ctx context.Context, externalID string) (*usecase.GatewayCharge, error) {
	if m.RetrieveChargeFunc != nil {
		return m.RetrieveChargeFunc(ctx, externalID)
	}
	return &usecase.GatewayCharge{ID: externalID, Status: usecase.GatewayStatusPending}, nil
}

func (m *MockPaymentGateway) ListSettlements(ctx context.Context, externalID string) ([]usecase.GatewaySettlement, error) {
	if m.ListSettlementsFunc != nil {
		return m.ListSettlementsFunc(ctx, externalID)
	}
	return nil, nil
}

// MockBillingLocker is a mock implementation of BillingLocker.
type MockBillingLocker struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireFunc func(ctx context.Context, memberID string, ttl time.Duration) (bool, error)
	ReleaseFunc func(ctx context.Context, memberID string) error
}

func NewMockBillingLocker() *MockBillingLocker {
	return &MockBillingLocker{held: make(map[string]bool)}
}

func (m *MockBillingLocker) Acquire(ctx context.Context, memberID string, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, memberID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[memberID] {
		return false, nil
	}
	m.held[memberID] = true
	return true, nil
}

func (m *MockBillingLocker) Release(ctx context.Context, memberID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, memberID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, memberID)
	return nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%03d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.Mutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{data: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
