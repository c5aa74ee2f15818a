package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/buensabor/storefront/internal/core/domain"
	"github.com/buensabor/storefront/internal/core/service"
	"github.com/buensabor/storefront/internal/port"
)

// Session key header carried by all cart, checkout and profile routes. The
// key identifies the browsing session; it is not an identity.
const sessionHeader = "X-Session-Key"

type HTTPHandler struct {
	catalog  *service.CatalogService
	carts    *service.CartRegistry
	checkout *service.CheckoutService
	cache    port.CacheRepository
	logger   *slog.Logger
}

func NewHTTPHandler(catalog *service.CatalogService, carts *service.CartRegistry, checkout *service.CheckoutService, cache port.CacheRepository, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		cache:    cache,
		logger:   logger.With("component", "http_handler"),
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type productResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	PrepMinutes int      `json:"prep_time_minutes"`
	Images      []string `json:"images"`
	CategoryID  int64    `json:"category_id"`
}

type selectionOptionResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TopLevel bool   `json:"top_level"`
}

type menuResponse struct {
	Selection string                    `json:"selection"`
	Options   []selectionOptionResponse `json:"options"`
	Products  []productResponse         `json:"products"`
}

type cartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Subtotal  string             `json:"subtotal"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type summaryResponse struct {
	Lines       []cartLineResponse `json:"lines"`
	Subtotal    string             `json:"subtotal"`
	DeliveryFee string             `json:"delivery_fee"`
	Total       string             `json:"total"`
}

type checkoutRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
	DeliveryMethod string `json:"delivery_method"`
	PaymentMethod  string `json:"payment_method"`
}

type checkoutOnlineResponse struct {
	RedirectURL string `json:"init_point"`
}

type orderResponse struct {
	ID          string             `json:"id"`
	Lines       []cartLineResponse `json:"lines"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	Address     string             `json:"address,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Delivery    string             `json:"delivery_method"`
	Subtotal    string             `json:"subtotal"`
	DeliveryFee string             `json:"delivery_fee"`
	Total       string             `json:"total"`
	Status      string             `json:"status"`
	CreatedAt   string             `json:"created_at"`
}

type profilePayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Menu serves the catalog view: the products visible for the requested
// selection plus the drill-down option list. A catalog load is retried on
// demand, so one upstream outage does not wedge the process.
func (h *HTTPHandler) Menu(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Loaded() {
		if err := h.catalog.Load(r.Context()); err != nil {
			h.logger.Warn("catalog load failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "catalog unavailable, try again")
			return
		}
	}

	sel := r.URL.Query().Get("selection")
	if sel == "" {
		sel = service.SelectionAll
	}

	products := h.catalog.ResolveSelection(sel)
	options := h.catalog.VisibleSelectionOptions(sel)

	resp := menuResponse{
		Selection: sel,
		Options:   make([]selectionOptionResponse, 0, len(options)),
		Products:  make([]productResponse, 0, len(products)),
	}
	for _, o := range options {
		resp.Options = append(resp.Options, selectionOptionResponse{ID: o.ID, Name: o.Name, TopLevel: o.TopLevel})
	}
	for _, p := range products {
		resp.Products = append(resp.Products, productResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			PrepMinutes: p.PrepMinutes,
			Images:      p.Images,
			CategoryID:  p.Category.ID,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(ledger))
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.catalog.Loaded() {
		if err := h.catalog.Load(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "catalog unavailable, try again")
			return
		}
	}

	product, found := h.catalog.Product(req.ProductID)
	if !found {
		writeError(w, http.StatusNotFound, "unknown product")
		return
	}

	if err := ledger.AddItem(product, req.Quantity); err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, cartToResponse(ledger))
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger.UpdateQuantity(productID, req.Quantity)
	writeJSON(w, http.StatusOK, cartToResponse(ledger))
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	ledger.RemoveItem(productID)
	writeJSON(w, http.StatusOK, cartToResponse(ledger))
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}
	ledger.Clear()
	writeJSON(w, http.StatusOK, cartToResponse(ledger))
}

// CheckoutSummary serves the priced projection for the current cart and
// delivery choice. An empty cart short-circuits with a conflict, matching
// the empty-cart view in the flow.
func (h *HTTPHandler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(w, r)
	if !ok {
		return
	}
	if ledger.Empty() {
		writeError(w, http.StatusConflict, "cart is empty")
		return
	}

	delivery := domain.DeliveryMethod(r.URL.Query().Get("delivery"))
	if delivery == "" {
		delivery = domain.DeliveryShip
	}
	if !delivery.Valid() {
		writeError(w, http.StatusBadRequest, "unknown delivery method")
		return
	}

	summary := h.checkout.Summary(ledger, delivery)
	writeJSON(w, http.StatusOK, summaryResponse{
		Lines:       linesToResponse(summary.Lines),
		Subtotal:    summary.Subtotal.StringFixed(2),
		DeliveryFee: summary.DeliveryFee.StringFixed(2),
		Total:       summary.Total.StringFixed(2),
	})
}

func (h *HTTPHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	sessionKey := r.Header.Get(sessionHeader)
	if sessionKey == "" {
		writeError(w, http.StatusBadRequest, "missing session key")
		return
	}
	ledger := h.carts.Ledger(sessionKey)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := domain.CheckoutDraft{
		Customer: domain.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		},
		Notes:    req.Notes,
		Delivery: domain.DeliveryMethod(req.DeliveryMethod),
		Payment:  domain.PaymentMethod(req.PaymentMethod),
	}

	result, err := h.checkout.Submit(r.Context(), sessionKey, ledger, draft)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			writeError(w, http.StatusConflict, "cart is empty")
		case errors.As(err, &validationErr):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  "missing required fields",
				Fields: validationErr.Fields,
			})
		case errors.Is(err, service.ErrSubmissionInFlight):
			writeError(w, http.StatusConflict, "a submission is already in flight")
		case errors.Is(err, service.ErrPaymentInitiationFailed):
			writeError(w, http.StatusBadGateway, "payment initiation failed, retry or pay with cash")
		default:
			h.logger.Error("checkout submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if result.Order != nil {
		writeJSON(w, http.StatusCreated, orderToResponse(result.Order))
		return
	}
	writeJSON(w, http.StatusOK, checkoutOnlineResponse{RedirectURL: result.RedirectURL})
}

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sessionKey := r.Header.Get(sessionHeader)
	if sessionKey == "" {
		writeError(w, http.StatusBadRequest, "missing session key")
		return
	}

	profile, err := h.cache.GetProfile(r.Context(), sessionKey)
	if err != nil {
		h.logger.Error("profile read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profile == nil {
		profile = &domain.Profile{}
	}

	writeJSON(w, http.StatusOK, profilePayload{
		Name:    profile.Name,
		Email:   profile.Email,
		Phone:   profile.Phone,
		Address: profile.Address,
	})
}

func (h *HTTPHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	sessionKey := r.Header.Get(sessionHeader)
	if sessionKey == "" {
		writeError(w, http.StatusBadRequest, "missing session key")
		return
	}

	var req profilePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := domain.Profile{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.cache.SaveProfile(r.Context(), sessionKey, profile); err != nil {
		h.logger.Error("profile save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ledger(w http.ResponseWriter, r *http.Request) (*service.CartLedger, bool) {
	sessionKey := r.Header.Get(sessionHeader)
	if sessionKey == "" {
		writeError(w, http.StatusBadRequest, "missing session key")
		return nil, false
	}
	return h.carts.Ledger(sessionKey), true
}

func linesToResponse(lines []domain.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}
	return out
}

func cartToResponse(ledger *service.CartLedger) cartResponse {
	return cartResponse{
		Lines:     linesToResponse(ledger.Lines()),
		ItemCount: ledger.ItemCount(),
		Subtotal:  ledger.Subtotal().StringFixed(2),
	}
}

func orderToResponse(order *domain.Order) orderResponse {
	return orderResponse{
		ID:          order.ID,
		Lines:       linesToResponse(order.Lines),
		Name:        order.Customer.Name,
		Email:       order.Customer.Email,
		Phone:       order.Customer.Phone,
		Address:     order.Customer.Address,
		Notes:       order.Notes,
		Delivery:    string(order.Delivery),
		Subtotal:    order.Subtotal.StringFixed(2),
		DeliveryFee: order.DeliveryFee.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
