package port

import (
	"context"

	"github.com/buensabor/storefront/internal/core/domain"
)

type PaymentClient interface {
	// InitiatePayment submits the payment request and returns the gateway
	// redirect link the user agent must be sent to
	InitiatePayment(ctx context.Context, req domain.PaymentRequest) (string, error)
}
