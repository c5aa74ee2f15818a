package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/buensabor/storefront/internal/core/domain"
)

// Mock PaymentClient
type mockPaymentClient struct {
	mu       sync.Mutex
	link     string
	err      error
	requests []domain.PaymentRequest
}

func (m *mockPaymentClient) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.link, nil
}

// Mock DatabaseRepository
type mockOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu       sync.Mutex
	keys     map[string]bool
	profiles map[string]domain.Profile
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		keys:     make(map[string]bool),
		profiles: make(map[string]domain.Profile),
	}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *mockCacheRepo) GetProfile(ctx context.Context, sessionKey string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[sessionKey]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *mockCacheRepo) SaveProfile(ctx context.Context, sessionKey string, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[sessionKey] = profile
	return nil
}

type checkoutFixture struct {
	svc     *CheckoutService
	payment *mockPaymentClient
	orders  *mockOrderRepo
	cache   *mockCacheRepo
}

func newCheckoutFixture() *checkoutFixture {
	payment := &mockPaymentClient{link: "https://gateway.example/pay/abc"}
	orders := &mockOrderRepo{}
	cache := newMockCacheRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &checkoutFixture{
		svc:     NewCheckoutService(payment, orders, cache, decimal.NewFromInt(5), logger),
		payment: payment,
		orders:  orders,
		cache:   cache,
	}
}

func validDraft(payment domain.PaymentMethod) domain.CheckoutDraft {
	return domain.CheckoutDraft{
		Customer: domain.Customer{
			Name:    "Juan Perez",
			Email:   "juan@example.com",
			Phone:   "+54 11 1234-5678",
			Address: "Av. Corrientes 1234",
		},
		Delivery: domain.DeliveryShip,
		Payment:  payment,
	}
}

func TestSummary_DeliveryFeeOnlyWhenShipping(t *testing.T) {
	f := newCheckoutFixture()
	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 2)

	shipped := f.svc.Summary(ledger, domain.DeliveryShip)
	if !shipped.Subtotal.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected subtotal 20, got %s", shipped.Subtotal)
	}
	if !shipped.DeliveryFee.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected fee 5, got %s", shipped.DeliveryFee)
	}
	if !shipped.Total.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total 25, got %s", shipped.Total)
	}

	// Switching to pickup drops the fee and touches nothing else.
	pickup := f.svc.Summary(ledger, domain.DeliveryPickup)
	if !pickup.DeliveryFee.Equal(decimal.Zero) {
		t.Errorf("expected zero fee for pickup, got %s", pickup.DeliveryFee)
	}
	if !pickup.Total.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected total 20 for pickup, got %s", pickup.Total)
	}
	if !pickup.Subtotal.Equal(shipped.Subtotal) {
		t.Error("subtotal must not change with the delivery method")
	}
	if len(pickup.Lines) != len(shipped.Lines) {
		t.Error("lines must not change with the delivery method")
	}
}

func TestValidateDraft_RequiredFields(t *testing.T) {
	f := newCheckoutFixture()

	err := f.svc.ValidateDraft(domain.CheckoutDraft{
		Delivery: domain.DeliveryShip,
		Payment:  domain.PaymentCash,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "email", "phone", "address"} {
		if _, ok := validationErr.Fields[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
}

func TestValidateDraft_AddressOnlyRequiredForShipping(t *testing.T) {
	f := newCheckoutFixture()

	draft := validDraft(domain.PaymentCash)
	draft.Address = ""
	draft.Delivery = domain.DeliveryPickup

	if err := f.svc.ValidateDraft(draft); err != nil {
		t.Errorf("address must not be required for pickup, got %v", err)
	}

	draft.Delivery = domain.DeliveryShip
	if err := f.svc.ValidateDraft(draft); err == nil {
		t.Error("address must be required when shipping to an address")
	}
}

func TestValidateDraft_UnknownEnums(t *testing.T) {
	f := newCheckoutFixture()

	draft := validDraft(domain.PaymentCash)
	draft.Delivery = "carrier-pigeon"
	draft.Payment = "barter"

	var validationErr *ValidationError
	if err := f.svc.ValidateDraft(draft); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	} else {
		if _, ok := validationErr.Fields["delivery_method"]; !ok {
			t.Error("expected delivery_method to be rejected")
		}
		if _, ok := validationErr.Fields["payment_method"]; !ok {
			t.Error("expected payment_method to be rejected")
		}
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	ledger := NewCartLedger()

	_, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentCash))
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
	if len(f.orders.orders) != 0 || len(f.payment.requests) != 0 {
		t.Error("an empty cart must not reach any external collaborator")
	}
}

func TestSubmit_ValidationBlocksNetwork(t *testing.T) {
	f := newCheckoutFixture()
	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 1)

	draft := validDraft(domain.PaymentOnline)
	draft.Email = ""

	var validationErr *ValidationError
	_, err := f.svc.Submit(context.Background(), "s1", ledger, draft)
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(f.payment.requests) != 0 {
		t.Error("no network call may happen with known-incomplete data")
	}
	if len(f.cache.keys) != 0 {
		t.Error("no submission guard may be set for an invalid draft")
	}
}

func TestSubmit_OnlineSuccess(t *testing.T) {
	f := newCheckoutFixture()
	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 2)
	ledger.AddItem(testProduct(2, "Soda", 3), 1)

	result, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentOnline))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.RedirectURL != "https://gateway.example/pay/abc" {
		t.Errorf("expected gateway redirect link, got %q", result.RedirectURL)
	}
	if result.Order != nil {
		t.Error("the online branch must not produce a confirmed order")
	}

	// The gateway confirms out-of-band; the cart stays intact.
	if ledger.ItemCount() != 3 {
		t.Errorf("cart must be untouched after online submission, got count %d", ledger.ItemCount())
	}

	if len(f.payment.requests) != 1 {
		t.Fatalf("expected one payment request, got %d", len(f.payment.requests))
	}
	req := f.payment.requests[0]
	if req.FulfillmentType != domain.FulfillmentTakeaway {
		t.Errorf("expected fulfillment tag %q, got %q", domain.FulfillmentTakeaway, req.FulfillmentType)
	}
	if len(req.Items) != 2 {
		t.Fatalf("expected 2 payment items, got %d", len(req.Items))
	}
	if req.Items[0].Quantity != 2 || req.Items[0].Item.ID != 1 {
		t.Errorf("unexpected first payment item: %+v", req.Items[0])
	}
	if req.Items[0].Item.Type != domain.PaymentItemTypeManufactured {
		t.Errorf("expected item type %q, got %q", domain.PaymentItemTypeManufactured, req.Items[0].Item.Type)
	}
}

func TestSubmit_OnlineFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	f.payment.err = errors.New("gateway returned 500")

	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 2)

	_, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentOnline))
	if !errors.Is(err, ErrPaymentInitiationFailed) {
		t.Fatalf("expected ErrPaymentInitiationFailed, got %v", err)
	}

	if ledger.ItemCount() != 2 {
		t.Error("cart must survive a failed payment initiation")
	}
	if len(f.cache.keys) != 0 {
		t.Error("the submission guard must be released after a failure")
	}

	// The customer may switch to cash and retry immediately.
	result, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentCash))
	if err != nil {
		t.Fatalf("retry with cash failed: %v", err)
	}
	if result.Order == nil {
		t.Fatal("expected a confirmed cash order on retry")
	}
}

func TestSubmit_OnlineMissingLink(t *testing.T) {
	f := newCheckoutFixture()
	f.payment.link = ""

	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 1)

	_, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentOnline))
	if !errors.Is(err, ErrPaymentInitiationFailed) {
		t.Errorf("a missing redirect link is a failed initiation, got %v", err)
	}
}

func TestSubmit_CashSuccess(t *testing.T) {
	f := newCheckoutFixture()
	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 2)

	draft := validDraft(domain.PaymentCash)
	draft.Notes = "ring the doorbell twice"

	result, err := f.svc.Submit(context.Background(), "s1", ledger, draft)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Order == nil {
		t.Fatal("expected a confirmed order")
	}

	order := result.Order
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("expected confirmed status, got %s", order.Status)
	}
	if order.Subtotal.String() != "20" && order.Subtotal.String() != "20.00" {
		t.Errorf("expected subtotal 20.00, got %s", order.Subtotal)
	}
	if !order.Total.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total 25.00 with delivery fee, got %s", order.Total)
	}
	if order.Notes != "ring the doorbell twice" {
		t.Errorf("expected notes on the order, got %q", order.Notes)
	}
	if order.CreatedAt.IsZero() {
		t.Error("expected a submission timestamp")
	}

	if len(f.orders.orders) != 1 {
		t.Fatalf("expected order persisted, got %d", len(f.orders.orders))
	}
	if !ledger.Empty() {
		t.Error("cart must be cleared after a confirmed cash order")
	}
}

func TestSubmit_CashPersistFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	f.orders.err = errors.New("mysql is down")

	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 2)

	_, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentCash))
	if err == nil {
		t.Fatal("expected an error when persistence fails")
	}
	if ledger.ItemCount() != 2 {
		t.Error("cart must survive a failed persistence")
	}
	if len(f.cache.keys) != 0 {
		t.Error("the submission guard must be released after a failure")
	}
}

func TestSubmit_DuplicateInFlight(t *testing.T) {
	f := newCheckoutFixture()
	f.cache.keys["checkout:s1"] = true

	ledger := NewCartLedger()
	ledger.AddItem(testProduct(1, "Pizza", 10), 1)

	_, err := f.svc.Submit(context.Background(), "s1", ledger, validDraft(domain.PaymentCash))
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("expected ErrSubmissionInFlight, got %v", err)
	}
	if len(f.orders.orders) != 0 {
		t.Error("a duplicate submission must not create an order")
	}
}
