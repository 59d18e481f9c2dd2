package ports

import "github.com/shopspring/decimal"

// CardReader holds at most one card at a time
type CardReader interface {
	Insert(cardNumber string) error
	Eject() error
	CardNumber() (string, error)
	IsInserted() bool
}

// CashDispenser pays out notes from a finite stock
type CashDispenser interface {
	Dispense(amount decimal.Decimal) error
	Remaining() decimal.Decimal
	Refill(amount decimal.Decimal) error
}

// ReceiptPrinter emits a formatted receipt
type ReceiptPrinter interface {
	Print(data string) error
	IsReady() bool
}

// Keypad accepts PIN input
type Keypad interface {
	Ready(bufferSize int) error
	IsActive() bool
}

// Peripherals bundles the hardware a teller drives
type Peripherals struct {
	Card    CardReader
	Cash    CashDispenser
	Printer ReceiptPrinter
	Keypad  Keypad
}
