// Package receipt lays out fixed-width teller receipts.
package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Width is the number of columns on the receipt roll
const Width = 40

// Builder accumulates receipt lines
type Builder struct {
	sb strings.Builder
}

// New creates an empty receipt
func New() *Builder {
	return &Builder{}
}

// Header writes the bank name, title, timestamp and terminal id
func (b *Builder) Header(bankName, terminalID string, at time.Time) *Builder {
	b.line(center(bankName))
	b.line(center("ATM RECEIPT"))
	b.Separator()
	b.line("Date: " + at.Format("02/01/2006 15:04:05"))
	b.line("ATM ID: " + terminalID)
	b.Separator()
	return b
}

// Field writes label and value joined by dot leaders. Pairs too wide for one
// line are split with the value right aligned below.
func (b *Builder) Field(label, value string) *Builder {
	if len(label)+len(value)+2 > Width {
		b.line(label)
		b.line(padLeft(value, Width))
		return b
	}
	b.line(label + strings.Repeat(".", Width-len(label)-len(value)) + value)
	return b
}

// Amount writes a monetary field with two decimal places
func (b *Builder) Amount(label string, amount decimal.Decimal) *Builder {
	return b.Field(label, amount.StringFixed(2))
}

func (b *Builder) Separator() *Builder {
	b.line(strings.Repeat("-", Width))
	return b
}

// Footer closes the receipt with a message
func (b *Builder) Footer(message string) *Builder {
	b.line(strings.Repeat("=", Width))
	b.line(center(message))
	b.line(center("Thank you for banking with us."))
	return b
}

func (b *Builder) String() string {
	return b.sb.String()
}

func (b *Builder) line(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

func center(text string) string {
	if len(text) >= Width {
		return text
	}
	padding := (Width - len(text)) / 2
	return padRight(strings.Repeat(" ", padding)+text, Width)
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
