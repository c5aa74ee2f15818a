package domain

// Item type tag expected by the payment service for catalog products, and
// the fixed fulfillment tag sent with every payment initiation.
const (
	PaymentItemTypeManufactured = "MANUFACTURED"
	FulfillmentTakeaway         = "TAKEAWAY"
)

type PaymentItemRef struct {
	ID   int64
	Type string
}

type PaymentItem struct {
	Quantity int
	Item     PaymentItemRef
}

// PaymentRequest is the body of a payment-initiation call: one entry per
// cart line plus the fulfillment tag. Prices are not sent; the payment
// service prices items on its side.
type PaymentRequest struct {
	Items           []PaymentItem
	FulfillmentType string
}
