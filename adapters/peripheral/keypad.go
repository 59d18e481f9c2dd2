package peripheral

import (
	"fmt"
	"sync"

	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/ports"
)

// MinPinBuffer holds a six digit PIN plus terminator
const MinPinBuffer = 7

// Keypad reports whether PIN input can be accepted
type Keypad struct {
	mu     sync.Mutex
	active bool
}

// NewKeypad creates an active keypad
func NewKeypad() *Keypad {
	return &Keypad{active: true}
}

var _ ports.Keypad = (*Keypad)(nil)

// Ready confirms the keypad can take a PIN into a buffer of bufferSize bytes
func (k *Keypad) Ready(bufferSize int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.active {
		return core.ErrKeypadInactive
	}
	if bufferSize < MinPinBuffer {
		return fmt.Errorf("buffer of %d bytes, need %d: %w", bufferSize, MinPinBuffer, core.ErrBufferTooSmall)
	}
	return nil
}

func (k *Keypad) IsActive() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.active
}

// SetActive enables or disables the keypad
func (k *Keypad) SetActive(active bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.active = active
}
