package clipboard

import (
	"fmt"
	"time"
)

// settleDelay gives the focused application time to consume the paste
// before the previous clipboard contents are restored.
const settleDelay = 600 * time.Millisecond

// Deliverer places finished text where the user wants it. Method
// "clipboard" copies only; "paste" also injects a Ctrl+V keystroke.
type Deliverer struct {
	Method  string
	Restore bool

	// clipboard and keystroke hooks, swapped in tests.
	copyFn func(string) error
	readFn func() (string, error)
	paste  func() error
	settle time.Duration
}

func NewDeliverer(method string, restore bool) *Deliverer {
	return &Deliverer{
		Method:  method,
		Restore: restore,
		copyFn:  Copy,
		readFn:  Read,
		paste:   Paste,
		settle:  settleDelay,
	}
}

// Deliver copies text to the clipboard and, in paste mode, injects the
// paste keystroke. On injection failure the text stays on the clipboard
// so the user can paste by hand; the returned error says so.
func (d *Deliverer) Deliver(text string) error {
	var prev string
	if d.Restore && d.Method == "paste" {
		prev, _ = d.readFn()
	}

	if err := d.copyFn(text); err != nil {
		return fmt.Errorf("clipboard copy: %w", err)
	}
	if d.Method != "paste" {
		return nil
	}

	if err := d.paste(); err != nil {
		return fmt.Errorf("paste injection failed, text left on clipboard: %w", err)
	}
	if d.Restore {
		time.Sleep(d.settle)
		if err := d.copyFn(prev); err != nil {
			return fmt.Errorf("clipboard restore: %w", err)
		}
	}
	return nil
}
