package peripheral

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/ports"
)

// ReceiptPrinter writes receipts to an io.Writer
type ReceiptPrinter struct {
	mu    sync.Mutex
	out   io.Writer
	ready bool
}

// NewReceiptPrinter creates a ready printer writing to out
func NewReceiptPrinter(out io.Writer) *ReceiptPrinter {
	return &ReceiptPrinter{out: out, ready: true}
}

var _ ports.ReceiptPrinter = (*ReceiptPrinter)(nil)

// Print emits data between separator rules
func (p *ReceiptPrinter) Print(data string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return core.ErrPrinterNotReady
	}
	if data == "" {
		return core.ErrNoReceiptData
	}

	rule := strings.Repeat("=", 32)
	if _, err := fmt.Fprintf(p.out, "%s\n%s\n%s\n", rule, strings.TrimRight(data, "\n"), rule); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}

func (p *ReceiptPrinter) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ready
}

// SetReady toggles paper/jam status
func (p *ReceiptPrinter) SetReady(ready bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ready = ready
}
