package peripheral

import (
	"fmt"
	"sync"

	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/ports"
	"github.com/shopspring/decimal"
)

var (
	// DefaultDenomination is the smallest note the dispenser can pay out
	DefaultDenomination = decimal.NewFromInt(50_000)

	// DefaultInitialCash is the stock loaded into a fresh dispenser
	DefaultInitialCash = decimal.NewFromInt(50_000_000)
)

// CashDispenser tracks a finite stock of notes
type CashDispenser struct {
	mu           sync.Mutex
	remaining    decimal.Decimal
	denomination decimal.Decimal
}

// NewCashDispenser creates a dispenser with the given stock and note size.
// A non-positive denomination falls back to DefaultDenomination.
func NewCashDispenser(initial, denomination decimal.Decimal) *CashDispenser {
	if !denomination.IsPositive() {
		denomination = DefaultDenomination
	}
	return &CashDispenser{remaining: initial, denomination: denomination}
}

var _ ports.CashDispenser = (*CashDispenser)(nil)

// Dispense pays out amount
func (c *CashDispenser) Dispense(amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("dispense %s: %w", amount, core.ErrInvalidAmount)
	}
	if amount.GreaterThan(c.remaining) {
		return fmt.Errorf("dispense %s with %s left: %w", amount, c.remaining, core.ErrInsufficientCash)
	}
	if !amount.Mod(c.denomination).IsZero() {
		return fmt.Errorf("dispense %s in notes of %s: %w", amount, c.denomination, core.ErrInvalidDenomination)
	}

	c.remaining = c.remaining.Sub(amount)
	return nil
}

// Remaining returns the cash left in the dispenser
func (c *CashDispenser) Remaining() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}

// Refill adds cash to the stock
func (c *CashDispenser) Refill(amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !amount.IsPositive() {
		return fmt.Errorf("refill %s: %w", amount, core.ErrInvalidAmount)
	}

	c.remaining = c.remaining.Add(amount)
	return nil
}

// Denomination returns the note size
func (c *CashDispenser) Denomination() decimal.Decimal {
	return c.denomination
}
