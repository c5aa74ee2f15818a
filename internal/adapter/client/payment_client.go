package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/buensabor/storefront/internal/core/domain"
)

// PaymentHTTPClient posts payment-initiation requests to the payment
// service and extracts the gateway redirect link from the response.
type PaymentHTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewPaymentHTTPClient(baseURL, token string, timeout time.Duration) *PaymentHTTPClient {
	return &PaymentHTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type paymentItemBody struct {
	Quantity int `json:"quantity"`
	Item     struct {
		ID   int64  `json:"id"`
		Type string `json:"type"`
	} `json:"item"`
}

type paymentRequestBody struct {
	Items           []paymentItemBody `json:"items"`
	FulfillmentType string            `json:"fulfillment_type"`
}

type paymentResponseBody struct {
	InitPoint string `json:"init_point"`
}

func (c *PaymentHTTPClient) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (string, error) {
	body := paymentRequestBody{FulfillmentType: req.FulfillmentType}
	for _, item := range req.Items {
		entry := paymentItemBody{Quantity: item.Quantity}
		entry.Item.ID = item.Item.ID
		entry.Item.Type = item.Item.Type
		body.Items = append(body.Items, entry)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment service returned %s", resp.Status)
	}

	var respBody paymentResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if respBody.InitPoint == "" {
		return "", fmt.Errorf("payment response missing redirect link")
	}

	return respBody.InitPoint, nil
}
