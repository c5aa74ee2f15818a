package service

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/buensabor/storefront/internal/core/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// CartLedger holds the session's cart lines. Lines are keyed by product id
// with at most one line per product; adds for an existing product merge
// into that line. Every mutation happens under the mutex, so readers never
// observe a half-updated line.
type CartLedger struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

func NewCartLedger() *CartLedger {
	return &CartLedger{}
}

// AddItem merges quantity into the existing line for the product, or
// appends a new line with a price snapshot taken from the product now.
// The snapshot is not refreshed on later adds, so a mid-session price
// change never affects items already chosen.
func (l *CartLedger) AddItem(p domain.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].ProductID == p.ID {
			l.lines[i].Quantity += quantity
			return nil
		}
	}

	l.lines = append(l.lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
	})
	return nil
}

// UpdateQuantity sets the line's quantity directly. A quantity of zero or
// less removes the line. A missing line is a no-op: the caller may race
// with a removal and that is fine.
func (l *CartLedger) UpdateQuantity(productID int64, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
		} else {
			l.lines[i].Quantity = quantity
		}
		return
	}
}

func (l *CartLedger) RemoveItem(productID int64) {
	l.UpdateQuantity(productID, 0)
}

func (l *CartLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

// Lines returns a copy of the current lines in insertion order.
func (l *CartLedger) Lines() []domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *CartLedger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines) == 0
}

// ItemCount is the sum of quantities across all lines, the number shown to
// the customer, not the line count.
func (l *CartLedger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is the sum of price times quantity across all lines, unrounded.
// Rounding to currency precision happens only at presentation time.
func (l *CartLedger) Subtotal() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// CartRegistry hands out one CartLedger per session key. The ledger lives
// for the session's lifetime and is shared between the catalog browsing and
// checkout surfaces.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*CartLedger
}

func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*CartLedger)}
}

// Ledger returns the session's ledger, creating it on first use.
func (r *CartRegistry) Ledger(sessionKey string) *CartLedger {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger, ok := r.carts[sessionKey]
	if !ok {
		ledger = NewCartLedger()
		r.carts[sessionKey] = ledger
	}
	return ledger
}
