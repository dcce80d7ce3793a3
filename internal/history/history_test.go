package history

import (
	"testing"

	"github.com/kobzarvs/qcore/internal/text"
)

func insertOp(at int, s string) Op {
	return Op{Kind: OpInsert, Range: text.Range{Start: at, End: at + len(s)}, Text: s}
}

func deleteOp(b *text.Buffer, r text.Range) Op {
	return Op{Kind: OpDelete, Range: r, Text: b.Read(r)}
}

func mustApply(t *testing.T, b *text.Buffer, tx Transaction) {
	t.Helper()
	if err := tx.Apply(b); err != nil {
		t.Fatalf("apply %v: %v", tx, err)
	}
}

func TestUndoRedoInverseLaw(t *testing.T) {
	b := text.NewBuffer("hello world")
	h := New(0)
	before := b.String()

	h.Begin()
	del := deleteOp(b, text.Range{Start: 6, End: 11})
	mustApply(t, b, Transaction{del})
	h.Push(del)
	ins := insertOp(6, "gophers\U0001F600")
	mustApply(t, b, Transaction{ins})
	h.Push(ins)
	h.End()
	after := b.String()
	if after != "hello gophers\U0001F600" {
		t.Fatalf("after = %q", after)
	}

	tx, ok := h.Undo()
	if !ok {
		t.Fatalf("Undo returned false")
	}
	if len(tx) != 2 || tx[0].Kind != OpDelete || tx[1].Kind != OpInsert {
		t.Fatalf("undo ops = %+v, want delete then insert", tx)
	}
	mustApply(t, b, tx)
	if got := b.String(); got != before {
		t.Fatalf("after undo = %q, want %q", got, before)
	}

	tx, ok = h.Redo()
	if !ok {
		t.Fatalf("Redo returned false")
	}
	mustApply(t, b, tx)
	if got := b.String(); got != after {
		t.Fatalf("after redo = %q, want %q", got, after)
	}

	tx, ok = h.Undo()
	if !ok {
		t.Fatalf("second Undo returned false")
	}
	mustApply(t, b, tx)
	if got := b.String(); got != before {
		t.Fatalf("after second undo = %q, want %q", got, before)
	}
}

func TestUndoEmpty(t *testing.T) {
	h := New(0)
	if _, ok := h.Undo(); ok {
		t.Fatalf("Undo on empty history returned true")
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("Redo on empty history returned true")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := New(0)
	h.Push(insertOp(0, "a"))
	if _, ok := h.Undo(); !ok {
		t.Fatalf("Undo returned false")
	}
	if !h.CanRedo() {
		t.Fatalf("CanRedo = false after undo")
	}
	h.Push(insertOp(0, "b"))
	if h.CanRedo() {
		t.Fatalf("CanRedo = true after new push")
	}
}

func TestNestedTransactionsCollapse(t *testing.T) {
	h := New(0)
	h.Begin()
	h.Push(insertOp(0, "a"))
	h.Begin()
	h.Push(insertOp(1, "b"))
	h.End()
	h.Push(insertOp(2, "c"))
	h.End()
	h.Push(insertOp(3, "d"))

	undo, _ := h.Len()
	if undo != 2 {
		t.Fatalf("undo len = %d, want 2", undo)
	}
	tx, _ := h.Undo()
	if len(tx) != 1 {
		t.Fatalf("first undo len = %d, want 1", len(tx))
	}
	tx, _ = h.Undo()
	if len(tx) != 3 {
		t.Fatalf("grouped undo len = %d, want 3", len(tx))
	}
	if tx[0].Text != "c" || tx[2].Text != "a" {
		t.Fatalf("grouped undo order = %+v, want c, b, a", tx)
	}
}

func TestEmptyTransactionRecordsNothing(t *testing.T) {
	h := New(0)
	h.Begin()
	h.End()
	if h.CanUndo() {
		t.Fatalf("CanUndo = true after empty transaction")
	}
	h.End()
	if h.InTransaction() {
		t.Fatalf("unbalanced End left a transaction open")
	}
}

func TestLimitDropsOldest(t *testing.T) {
	h := New(2)
	h.Push(insertOp(0, "a"))
	h.Push(insertOp(1, "b"))
	h.Push(insertOp(2, "c"))
	undo, _ := h.Len()
	if undo != 2 {
		t.Fatalf("undo len = %d, want 2", undo)
	}
	tx, _ := h.Undo()
	if tx[0].Text != "c" {
		t.Fatalf("newest = %q, want %q", tx[0].Text, "c")
	}
	tx, _ = h.Undo()
	if tx[0].Text != "b" {
		t.Fatalf("next = %q, want %q", tx[0].Text, "b")
	}
	if h.CanUndo() {
		t.Fatalf("oldest transaction was kept")
	}
}

func TestOpInverse(t *testing.T) {
	op := insertOp(3, "xy")
	inv := op.Inverse()
	if inv.Kind != OpDelete || inv.Range != op.Range || inv.Text != op.Text {
		t.Fatalf("Inverse = %+v", inv)
	}
	if inv.Inverse() != op {
		t.Fatalf("double inverse = %+v, want %+v", inv.Inverse(), op)
	}
}
