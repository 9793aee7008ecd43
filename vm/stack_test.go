package vm

import (
	"errors"
	"testing"
)

func TestStackPushPopPeek(t *testing.T) {
	st := NewStack()
	st.Push(1)
	st.Push(2)

	if top, err := st.Peek(); err != nil || top != Value(2) {
		t.Fatalf("Peek = %v, %v; want 2, nil", top, err)
	}
	if st.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", st.Depth())
	}
	if v, err := st.Pop(); err != nil || v != Value(2) {
		t.Fatalf("Pop = %v, %v; want 2, nil", v, err)
	}
	if v, err := st.Pop(); err != nil || v != Value(1) {
		t.Fatalf("Pop = %v, %v; want 1, nil", v, err)
	}
}

func TestStackUnderflow(t *testing.T) {
	st := NewStack()
	if _, err := st.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Pop on empty stack: err = %v, want ErrStackUnderflow", err)
	}
	if _, err := st.Peek(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("Peek on empty stack: err = %v, want ErrStackUnderflow", err)
	}
	st.Push(1)
	if _, err := st.PeekAt(1); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("PeekAt past bottom: err = %v, want ErrStackUnderflow", err)
	}
}

func TestStackOfOrdersTopFirst(t *testing.T) {
	st := StackOf(7, 8, 9)
	if top, _ := st.Peek(); top != Value(7) {
		t.Fatalf("top = %s, want 7", top)
	}
	if below, _ := st.PeekAt(1); below != Value(8) {
		t.Fatalf("PeekAt(1) = %s, want 8", below)
	}
	if got := st.String(); got != "[7 8 9]" {
		t.Fatalf("String = %q, want %q", got, "[7 8 9]")
	}
}

func TestStackCloneIsIndependent(t *testing.T) {
	st := StackOf(1, 2)
	cl := st.Clone()
	st.Push(99)
	if cl.Depth() != 2 {
		t.Fatalf("clone depth changed to %d after mutating original", cl.Depth())
	}
	if top, _ := cl.Peek(); top != Value(1) {
		t.Fatalf("clone top = %s, want 1", top)
	}
}
