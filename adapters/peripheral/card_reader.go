// Package peripheral simulates the teller hardware. Every device is an
// independent instance; nothing is shared between sessions.
package peripheral

import (
	"fmt"
	"sync"

	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/ports"
)

// CardReader is a single-slot card reader
type CardReader struct {
	mu       sync.Mutex
	card     string
	inserted bool
}

// NewCardReader creates an empty reader
func NewCardReader() *CardReader {
	return &CardReader{}
}

var _ ports.CardReader = (*CardReader)(nil)

// Insert accepts a card if the slot is empty
func (r *CardReader) Insert(cardNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inserted {
		return core.ErrCardAlreadyInserted
	}
	if cardNumber == "" {
		return fmt.Errorf("empty card number: %w", core.ErrInvalidInput)
	}

	r.card = cardNumber
	r.inserted = true
	return nil
}

// Eject returns the card to the customer
func (r *CardReader) Eject() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inserted {
		return core.ErrNoCard
	}

	r.card = ""
	r.inserted = false
	return nil
}

// CardNumber reads the inserted card
func (r *CardReader) CardNumber() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inserted {
		return "", core.ErrNoCard
	}
	return r.card, nil
}

func (r *CardReader) IsInserted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.inserted
}
