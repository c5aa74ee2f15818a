package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/buensabor/storefront/internal/core/domain"
	"github.com/buensabor/storefront/internal/port"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrPaymentInitiationFailed = errors.New("payment initiation failed")
	ErrSubmissionInFlight      = errors.New("a submission is already in flight")
)

// ValidationError reports the required fields missing from a checkout
// draft. Submission is blocked locally; nothing reaches the network while
// required data is known to be incomplete.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "invalid checkout draft: " + strings.Join(names, ", ")
}

// SubmitResult carries the outcome of whichever fulfillment branch ran:
// the gateway redirect link for online payment, or the confirmed order for
// cash on delivery.
type SubmitResult struct {
	RedirectURL string
	Order       *domain.Order
}

// CheckoutService turns a cart plus customer input into a priced order and
// routes it down one of the two fulfillment branches.
type CheckoutService struct {
	payment     port.PaymentClient
	orders      port.DatabaseRepository
	cache       port.CacheRepository
	deliveryFee decimal.Decimal
	logger      *slog.Logger
}

func NewCheckoutService(payment port.PaymentClient, orders port.DatabaseRepository, cache port.CacheRepository, deliveryFee decimal.Decimal, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		payment:     payment,
		orders:      orders,
		cache:       cache,
		deliveryFee: deliveryFee,
		logger:      logger.With("component", "checkout_service"),
	}
}

// Summary prices the cart under the given delivery method. The delivery
// fee applies only when shipping to an address. The projection is computed
// fresh on every call and never cached.
func (s *CheckoutService) Summary(ledger *CartLedger, delivery domain.DeliveryMethod) domain.OrderSummary {
	subtotal := ledger.Subtotal()
	fee := decimal.Zero
	if delivery == domain.DeliveryShip {
		fee = s.deliveryFee
	}
	return domain.OrderSummary{
		Lines:       ledger.Lines(),
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// ValidateDraft checks the required fields: name, email and phone always,
// address only when shipping to an address. A previously entered address is
// simply ignored for pickup, never rejected.
func (s *CheckoutService) ValidateDraft(draft domain.CheckoutDraft) error {
	fields := make(map[string]string)
	if strings.TrimSpace(draft.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(draft.Email) == "" {
		fields["email"] = "required"
	}
	if strings.TrimSpace(draft.Phone) == "" {
		fields["phone"] = "required"
	}
	if !draft.Delivery.Valid() {
		fields["delivery_method"] = "must be delivery or pickup"
	}
	if !draft.Payment.Valid() {
		fields["payment_method"] = "must be online or cash"
	}
	if draft.Delivery == domain.DeliveryShip && strings.TrimSpace(draft.Address) == "" {
		fields["address"] = "required for delivery"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Submit runs the Submitting transition. An empty cart short-circuits
// before any other work, and validation failures block the transition
// locally. On any failure the cart and draft are left intact so the
// customer can retry or switch payment method.
func (s *CheckoutService) Submit(ctx context.Context, sessionKey string, ledger *CartLedger, draft domain.CheckoutDraft) (*SubmitResult, error) {
	if ledger.Empty() {
		return nil, ErrEmptyCart
	}
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	key := "checkout:" + sessionKey
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if releaseErr := s.cache.ReleaseIdempotency(ctx, key); releaseErr != nil {
			s.logger.Warn("failed to release submission guard", "session", sessionKey, "error", releaseErr)
		}
	}()

	switch draft.Payment {
	case domain.PaymentOnline:
		return s.submitOnline(ctx, ledger)
	default:
		return s.submitCash(ctx, ledger, draft)
	}
}

// submitOnline maps the cart to a payment request and hands the customer
// off to the gateway. The cart is kept as is: the gateway confirms the
// order out-of-band after the redirect.
func (s *CheckoutService) submitOnline(ctx context.Context, ledger *CartLedger) (*SubmitResult, error) {
	req := domain.PaymentRequest{FulfillmentType: domain.FulfillmentTakeaway}
	for _, line := range ledger.Lines() {
		req.Items = append(req.Items, domain.PaymentItem{
			Quantity: line.Quantity,
			Item: domain.PaymentItemRef{
				ID:   line.ProductID,
				Type: domain.PaymentItemTypeManufactured,
			},
		})
	}

	link, err := s.payment.InitiatePayment(ctx, req)
	if err != nil {
		s.logger.Warn("payment initiation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiationFailed, err)
	}
	if link == "" {
		return nil, fmt.Errorf("%w: gateway returned no redirect link", ErrPaymentInitiationFailed)
	}

	s.logger.Info("payment initiated", "items", len(req.Items))
	return &SubmitResult{RedirectURL: link}, nil
}

// submitCash assembles the confirmed order, persists it and clears the
// cart. The ledger is only cleared after the order is accepted.
func (s *CheckoutService) submitCash(ctx context.Context, ledger *CartLedger, draft domain.CheckoutDraft) (*SubmitResult, error) {
	summary := s.Summary(ledger, draft.Delivery)

	order := domain.Order{
		ID:          uuid.NewString(),
		Lines:       summary.Lines,
		Customer:    draft.Customer,
		Delivery:    draft.Delivery,
		Notes:       draft.Notes,
		Subtotal:    summary.Subtotal.Round(2),
		DeliveryFee: summary.DeliveryFee.Round(2),
		Total:       summary.Total.Round(2),
		Status:      domain.OrderStatusConfirmed,
		CreatedAt:   time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.Error("failed to persist cash order", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	ledger.Clear()
	s.logger.Info("cash order confirmed", "order_id", order.ID, "total", order.Total.StringFixed(2))
	return &SubmitResult{Order: &order}, nil
}
