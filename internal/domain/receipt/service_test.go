package receipt

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centavo/internal/core/apperror"
	"centavo/internal/core/id"
	"centavo/internal/core/numerator"
	"centavo/internal/core/types"
	"centavo/internal/domain/delivery"
	"centavo/internal/domain/pricing"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu       sync.Mutex
	receipts map[id.ID]*Receipt
}

func newMemRepo() *memRepo {
	return &memRepo{receipts: make(map[id.ID]*Receipt)}
}

func (m *memRepo) Create(_ context.Context, r *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.receipts[r.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, receiptID id.ID) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[receiptID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", receiptID)
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) FindByDeliveryRef(_ context.Context, provider, externalID string) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.Delivery != nil && r.Delivery.Provider == provider && r.Delivery.ExternalID == externalID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("receipt", externalID)
}

func (m *memRepo) GetStatus(ctx context.Context, receiptID id.ID) (Status, error) {
	r, err := m.Get(ctx, receiptID)
	if err != nil {
		return "", err
	}
	return r.Status, nil
}

func (m *memRepo) Update(_ context.Context, r *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.receipts[r.ID]; !ok {
		return apperror.NewNotFound("receipt", r.ID)
	}
	cp := *r
	m.receipts[r.ID] = &cp
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, receiptID id.ID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[receiptID]
	if !ok {
		return apperror.NewNotFound("receipt", receiptID)
	}
	r.Status = status
	return nil
}

func (m *memRepo) SetDeliveryRef(_ context.Context, receiptID id.ID, ref DeliveryRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[receiptID]
	if !ok {
		return apperror.NewNotFound("receipt", receiptID)
	}
	r.Delivery = &ref
	return nil
}

func (m *memRepo) UpdateProviderStatus(_ context.Context, receiptID id.ID, providerStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.receipts[receiptID]
	if !ok {
		return apperror.NewNotFound("receipt", receiptID)
	}
	if r.Delivery != nil {
		r.Delivery.ProviderStatus = providerStatus
	}
	return nil
}

// passTx runs the function directly, no transaction semantics needed here.
type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingLedger struct {
	posted []types.Money
}

func (l *recordingLedger) PostSaleCollection(_ context.Context, _ id.ID, amount types.Money, _ string) error {
	l.posted = append(l.posted, amount)
	return nil
}

type courierStub struct {
	ref *delivery.OrderRef
	raw string
	err error
}

func (c *courierStub) CreateOrder(context.Context, delivery.Order) (*delivery.OrderRef, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.ref, nil
}

func (c *courierStub) GetStatus(context.Context, string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.raw, nil
}

func newTestService(t *testing.T, stub *courierStub) (*Service, *memRepo, *recordingLedger) {
	t.Helper()
	repo := newMemRepo()
	reg := delivery.NewRegistry()
	if stub != nil {
		reg.Register(delivery.ProviderOptimus, stub)
	}
	ledger := &recordingLedger{}
	svc := NewService(repo, reg, numerator.NewMock(), passTx{}, ledger, nil)
	return svc, repo, ledger
}

func saleInput() CreateInput {
	return CreateInput{
		Kind:          KindSale,
		CustomerName:  "U Ba",
		CustomerPhone: "5551234567",
		Items: []pricing.LineItem{
			{Quantity: 2, UnitPrice: types.MustMoney("10.00")},
		},
		TaxPercent: types.MustMoney("5"),
	}
}

func TestService_CreatePricesAndNumbers(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, r.Status)
	assert.Contains(t, r.Number, "RCP-")
	assert.True(t, r.Subtotal.Equal(types.MustMoney("20.00")))
	assert.True(t, r.TaxAmount.Equal(types.MustMoney("1.00")))
	assert.True(t, r.GrandTotal.Equal(types.MustMoney("21.00")))
}

func TestService_CreateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	in := saleInput()
	in.Kind = "refund"
	_, err := svc.Create(context.Background(), in)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	in = saleInput()
	in.Items = nil
	_, err = svc.Create(context.Background(), in)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestService_EnsureEditable(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	status, err := svc.EnsureEditable(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusCompleted))
	_, err = svc.EnsureEditable(context.Background(), r.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeReceiptLocked))

	_, err = svc.EnsureEditable(context.Background(), id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestService_UpdateRepricesReceipt(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), r.ID, UpdateInput{
		CustomerName: "U Ba",
		Items: []pricing.LineItem{
			{Quantity: 1, UnitPrice: types.MustMoney("100.00"),
				Discount: &pricing.Discount{Mode: pricing.DiscountPercent, Value: types.MustMoney("50")}},
		},
		TaxPercent: types.MustMoney("0"),
	})
	require.NoError(t, err)
	assert.True(t, updated.GrandTotal.Equal(types.MustMoney("50.00")))
}

func TestService_UpdateLockedReceiptFails(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusCompleted))

	_, err = svc.Update(context.Background(), r.ID, UpdateInput{Items: saleInput().Items})
	assert.True(t, apperror.HasCode(err, apperror.CodeReceiptLocked))
}

func TestService_AssignDelivery(t *testing.T) {
	stub := &courierStub{ref: &delivery.OrderRef{
		Provider: delivery.ProviderOptimus, ExternalID: "OPT-7", ProviderStatus: "pending_pickup",
	}}
	svc, repo, _ := newTestService(t, stub)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	ref, err := svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{
		CompanyKey:  "optimus",
		Destination: delivery.Destination{ProviderCityID: "YGN-01", ProviderAreaID: "A-1", AddressLine: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "OPT-7", ref.ExternalID)

	stored, err := repo.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOrdered, stored.Status)
	require.NotNil(t, stored.Delivery)
	assert.Equal(t, "optimus", stored.Delivery.Provider)
}

func TestService_AssignDeliveryUnsupportedProvider(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "carrier-pigeon"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedProvider))
}

func TestService_RefreshDeliveryStatusMergesState(t *testing.T) {
	stub := &courierStub{
		ref: &delivery.OrderRef{Provider: delivery.ProviderOptimus, ExternalID: "OPT-7", ProviderStatus: "pending_pickup"},
		raw: "IN_TRANSIT",
	}
	svc, repo, _ := newTestService(t, stub)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "optimus"})
	require.NoError(t, err)

	res, err := svc.RefreshDeliveryStatus(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusOnDelivery, res.Internal)

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusOnDelivery, stored.Status)
	assert.Equal(t, "IN_TRANSIT", stored.Delivery.ProviderStatus)
}

func TestService_StaleProviderStatusLeavesReceipt(t *testing.T) {
	stub := &courierStub{
		ref: &delivery.OrderRef{Provider: delivery.ProviderOptimus, ExternalID: "OPT-7", ProviderStatus: "pending_pickup"},
	}
	svc, repo, _ := newTestService(t, stub)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "optimus"})
	require.NoError(t, err)

	// Move forward, then receive a stale "picked_up" push: the guard
	// rejects the backwards edge and the receipt keeps its state.
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusPaymentCollected))
	res, err := svc.ApplyProviderStatus(context.Background(), r.ID, "picked_up")
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusOnDelivery, res.Internal)

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusPaymentCollected, stored.Status)
}

func TestService_ApplyProviderStatusByRef(t *testing.T) {
	stub := &courierStub{
		ref: &delivery.OrderRef{Provider: delivery.ProviderOptimus, ExternalID: "OPT-9", ProviderStatus: "pending_pickup"},
	}
	svc, repo, _ := newTestService(t, stub)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "optimus"})
	require.NoError(t, err)

	res, err := svc.ApplyProviderStatusByRef(context.Background(), "optimus", "OPT-9", "in_transit")
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusOnDelivery, res.Internal)

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusOnDelivery, stored.Status)

	_, err = svc.ApplyProviderStatusByRef(context.Background(), "optimus", "unknown-waybill", "delivered")
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestService_CollectPaymentPostsCash(t *testing.T) {
	svc, repo, ledger := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusOnDelivery))

	require.NoError(t, svc.CollectPayment(context.Background(), r.ID, "cash"))

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusPaymentCollected, stored.Status)
	require.Len(t, ledger.posted, 1)
	assert.True(t, ledger.posted[0].Equal(types.MustMoney("21.00")))
}

func TestService_CollectPaymentRetryPostsOnce(t *testing.T) {
	svc, repo, ledger := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusOnDelivery))

	require.NoError(t, svc.CollectPayment(context.Background(), r.ID, "cash"))
	require.NoError(t, svc.CollectPayment(context.Background(), r.ID, "cash"))

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusPaymentCollected, stored.Status)
	require.Len(t, ledger.posted, 1)
	assert.True(t, ledger.posted[0].Equal(types.MustMoney("21.00")))
}

func TestService_AssignDeliveryRefusesRedispatch(t *testing.T) {
	stub := &courierStub{ref: &delivery.OrderRef{
		Provider: delivery.ProviderOptimus, ExternalID: "OPT-1", ProviderStatus: "pending_pickup",
	}}
	svc, repo, _ := newTestService(t, stub)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "optimus"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusOnDelivery))

	// A second dispatch must not create another courier order or rewind
	// the receipt to ordered.
	stub.ref = &delivery.OrderRef{Provider: delivery.ProviderOptimus, ExternalID: "OPT-2"}
	_, err = svc.AssignDelivery(context.Background(), r.ID, AssignDeliveryInput{CompanyKey: "optimus"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	stored, _ := repo.Get(context.Background(), r.ID)
	assert.Equal(t, StatusOnDelivery, stored.Status)
	require.NotNil(t, stored.Delivery)
	assert.Equal(t, "OPT-1", stored.Delivery.ExternalID)
}

func TestService_CollectPaymentGuarded(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	r, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), r.ID, StatusCompleted))

	err = svc.CollectPayment(context.Background(), r.ID, "cash")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}
