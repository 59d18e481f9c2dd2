package peripheral

import (
	"io"

	"github.com/layer-3/teller/ports"
	"github.com/shopspring/decimal"
)

// NewSimulated returns a fresh set of simulated devices for one teller
func NewSimulated(out io.Writer, initialCash, denomination decimal.Decimal) ports.Peripherals {
	return ports.Peripherals{
		Card:    NewCardReader(),
		Cash:    NewCashDispenser(initialCash, denomination),
		Printer: NewReceiptPrinter(out),
		Keypad:  NewKeypad(),
	}
}
