package core

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrLimitExceeded     = errors.New("daily withdrawal limit exceeded")
	ErrBelowMinimum      = errors.New("balance would fall below minimum")
	ErrCeilingExceeded   = errors.New("transfer ceiling exceeded")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Peripheral and session errors
var (
	ErrCardAlreadyInserted = errors.New("card already inserted")
	ErrNoCard              = errors.New("no card inserted")
	ErrInsufficientCash    = errors.New("insufficient cash in dispenser")
	ErrInvalidDenomination = errors.New("amount is not a multiple of the denomination")
	ErrPrinterNotReady     = errors.New("receipt printer not ready")
	ErrNoReceiptData       = errors.New("no receipt data")
	ErrKeypadInactive      = errors.New("keypad inactive")
	ErrBufferTooSmall      = errors.New("keypad buffer too small")
	ErrPinMismatch         = errors.New("pin does not match")
	ErrCardLocked          = errors.New("card locked after too many pin attempts")
	ErrNoSession           = errors.New("no active session")
	ErrSessionExpired      = errors.New("session has expired")
)
