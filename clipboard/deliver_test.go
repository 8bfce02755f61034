package clipboard

import (
	"errors"
	"strings"
	"testing"
)

func testDeliverer(method string, restore bool) (*Deliverer, *[]string) {
	var ops []string
	d := &Deliverer{
		Method:  method,
		Restore: restore,
		copyFn: func(text string) error {
			ops = append(ops, "copy:"+text)
			return nil
		},
		readFn: func() (string, error) {
			ops = append(ops, "read")
			return "previous", nil
		},
		paste: func() error {
			ops = append(ops, "paste")
			return nil
		},
		settle: 0,
	}
	return d, &ops
}

func TestDeliverClipboardOnly(t *testing.T) {
	d, ops := testDeliverer("clipboard", true)
	if err := d.Deliver("hello"); err != nil {
		t.Fatal(err)
	}
	want := []string{"copy:hello"}
	if len(*ops) != len(want) || (*ops)[0] != want[0] {
		t.Errorf("ops = %v, want %v", *ops, want)
	}
}

func TestDeliverPasteWithRestore(t *testing.T) {
	d, ops := testDeliverer("paste", true)
	if err := d.Deliver("hello"); err != nil {
		t.Fatal(err)
	}
	want := []string{"read", "copy:hello", "paste", "copy:previous"}
	if len(*ops) != len(want) {
		t.Fatalf("ops = %v, want %v", *ops, want)
	}
	for i := range want {
		if (*ops)[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, (*ops)[i], want[i])
		}
	}
}

func TestDeliverPasteNoRestore(t *testing.T) {
	d, ops := testDeliverer("paste", false)
	if err := d.Deliver("hello"); err != nil {
		t.Fatal(err)
	}
	for _, op := range *ops {
		if op == "read" || op == "copy:previous" {
			t.Errorf("unexpected clipboard restore op %q", op)
		}
	}
}

func TestDeliverInjectionFailureKeepsText(t *testing.T) {
	d, ops := testDeliverer("paste", true)
	d.paste = func() error { return errors.New("no uinput") }

	err := d.Deliver("hello")
	if err == nil {
		t.Fatal("expected injection error")
	}
	if !strings.Contains(err.Error(), "left on clipboard") {
		t.Errorf("err = %v", err)
	}
	// The text must remain copied and never be overwritten by restore.
	last := (*ops)[len(*ops)-1]
	if last != "copy:hello" {
		t.Errorf("last op = %q, clipboard should still hold the text", last)
	}
}

func TestDeliverCopyFailure(t *testing.T) {
	d, _ := testDeliverer("clipboard", false)
	d.copyFn = func(string) error { return errors.New("no display") }

	if err := d.Deliver("hello"); err == nil {
		t.Fatal("expected copy error")
	}
}
