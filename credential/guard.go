// Package credential hashes, verifies and obfuscates PINs.
//
// Everything here is simulation-grade. The digest is djb2, which is fast and
// not collision resistant, and the obfuscation is a repeating-key XOR. A real
// deployment needs a password hashing function and authenticated encryption.
package credential

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/layer-3/teller/core"
)

const (
	// PinLength is the number of digits a customer PIN carries
	PinLength = 6

	// DefaultSharedKey is the obfuscation key shared with the backend out of band
	DefaultSharedKey = "BANK_ECO_SECURE_2026"

	hashSeed uint64 = 5381
)

// ErrEmptySharedKey is returned when a Guard is configured without a key
var ErrEmptySharedKey = errors.New("shared key must not be empty")

// Hash is the decimal rendering of a PIN digest
type Hash string

// HashPin digests pin with djb2 (hash = hash*33 + byte, seeded at 5381,
// wrapping at 64 bits). Equal PINs always give equal hashes; distinct PINs
// collide only with small probability.
func HashPin(pin string) (Hash, error) {
	if pin == "" {
		return "", fmt.Errorf("hash pin: %w", core.ErrInvalidInput)
	}

	h := hashSeed
	for i := 0; i < len(pin); i++ {
		h = h*33 + uint64(pin[i])
	}

	return Hash(strconv.FormatUint(h, 10)), nil
}

// VerifyPin recomputes the digest of pin and compares it with expected
func VerifyPin(pin string, expected Hash) bool {
	computed, err := HashPin(pin)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1
}

// ValidatePinFormat checks that pin is exactly PinLength ASCII digits
func ValidatePinFormat(pin string) error {
	if len(pin) != PinLength {
		return fmt.Errorf("pin must be %d digits: %w", PinLength, core.ErrInvalidInput)
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return fmt.Errorf("pin must be numeric: %w", core.ErrInvalidInput)
		}
	}
	return nil
}

// Guard obfuscates PINs for transport with a key held by both ends
type Guard struct {
	key []byte
}

// NewGuard creates a guard for the given shared key
func NewGuard(sharedKey string) (*Guard, error) {
	if sharedKey == "" {
		return nil, ErrEmptySharedKey
	}
	return &Guard{key: []byte(sharedKey)}, nil
}

// Obfuscate XORs pin against the repeating key and renders the bytes as
// uppercase hex, two digits per byte
func (g *Guard) Obfuscate(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("obfuscate pin: %w", core.ErrInvalidInput)
	}
	return strings.ToUpper(hex.EncodeToString(g.xor([]byte(pin)))), nil
}

// Deobfuscate reverses Obfuscate. It is what the receiving side applies.
func (g *Guard) Deobfuscate(encoded string) (string, error) {
	if encoded == "" {
		return "", fmt.Errorf("deobfuscate pin: %w", core.ErrInvalidInput)
	}
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("deobfuscate pin: %v: %w", err, core.ErrInvalidInput)
	}
	return string(g.xor(raw)), nil
}

func (g *Guard) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ g.key[i%len(g.key)]
	}
	return out
}
