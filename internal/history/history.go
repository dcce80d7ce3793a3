// Package history records edits as invertible operations grouped into
// transactions, and replays their inverses for undo and redo.
package history

import "github.com/kobzarvs/qcore/internal/text"

type OpKind int

const (
	OpInsert OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is a single buffer mutation. For an insert, Range is where Text ended up
// after insertion; for a delete, Range is where Text was before removal.
type Op struct {
	Kind  OpKind
	Range text.Range
	Text  string
}

// Inverse turns an insert into the delete that undoes it and vice versa.
func (op Op) Inverse() Op {
	switch op.Kind {
	case OpInsert:
		op.Kind = OpDelete
	case OpDelete:
		op.Kind = OpInsert
	}
	return op
}

// Apply performs op against b.
func (op Op) Apply(b *text.Buffer) error {
	switch op.Kind {
	case OpInsert:
		return b.Insert(op.Range.Start, op.Text)
	case OpDelete:
		_, err := b.Delete(op.Range)
		return err
	}
	return nil
}

// Transaction is a group of operations undone and redone as one step.
type Transaction []Op

// Inverse returns the operations that exactly reverse t: every operation
// inverted, last applied first.
func (t Transaction) Inverse() Transaction {
	inv := make(Transaction, len(t))
	for i, op := range t {
		inv[len(t)-1-i] = op.Inverse()
	}
	return inv
}

// Apply performs every operation of t in order against b.
func (t Transaction) Apply(b *text.Buffer) error {
	for _, op := range t {
		if err := op.Apply(b); err != nil {
			return err
		}
	}
	return nil
}

const DefaultLimit = 1000

// History holds the undo and redo stacks.
type History struct {
	undo  []Transaction
	redo  []Transaction
	limit int
	depth int
	// open is the index in undo of the transaction collecting pushes, or -1.
	open int
}

// New returns a History keeping at most limit transactions; limit <= 0 uses
// DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit, open: -1}
}

// Push records op. It joins the open transaction if there is one, otherwise
// it becomes a transaction of its own. Any push clears the redo stack.
func (h *History) Push(op Op) {
	h.redo = nil
	if h.depth > 0 && h.open >= 0 {
		h.undo[h.open] = append(h.undo[h.open], op)
		return
	}
	h.undo = append(h.undo, Transaction{op})
	if h.depth > 0 {
		h.open = len(h.undo) - 1
	}
	h.trim()
}

// Begin opens a transaction. Nested calls only count; the outermost
// Begin/End pair delimits the transaction.
func (h *History) Begin() {
	h.depth++
}

// End closes the transaction opened by the matching Begin.
func (h *History) End() {
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth == 0 {
		h.open = -1
	}
}

// InTransaction reports whether a Begin is pending its End.
func (h *History) InTransaction() bool { return h.depth > 0 }

// Undo pops the newest transaction, moves its inverse to the redo stack and
// returns that inverse for replay. It returns false when there is nothing to
// undo.
func (h *History) Undo() (Transaction, bool) {
	h.closeOpen()
	if len(h.undo) == 0 {
		return nil, false
	}
	t := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	inv := t.Inverse()
	h.redo = append(h.redo, inv)
	return inv, true
}

// Redo is the mirror of Undo.
func (h *History) Redo() (Transaction, bool) {
	h.closeOpen()
	if len(h.redo) == 0 {
		return nil, false
	}
	t := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	inv := t.Inverse()
	h.undo = append(h.undo, inv)
	h.trim()
	return inv, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (undo, redo int) { return len(h.undo), len(h.redo) }

// Clear drops both stacks, as on document load.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.depth = 0
	h.open = -1
}

func (h *History) closeOpen() {
	h.depth = 0
	h.open = -1
}

func (h *History) trim() {
	if len(h.undo) <= h.limit {
		return
	}
	drop := len(h.undo) - h.limit
	h.undo = append([]Transaction(nil), h.undo[drop:]...)
	if h.open >= 0 {
		h.open -= drop
		if h.open < 0 {
			h.open = -1
		}
	}
}
