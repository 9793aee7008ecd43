package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Stack: the operand stack
// ---------------------------------------------------------------------------

// Stack is the operand stack: the single mutable state of an execution.
// It grows without bound above and fails with ErrStackUnderflow below.
// Values are stored bottom-first; the top is the last element.
type Stack struct {
	vals []Value
}

// NewStack returns an empty operand stack.
func NewStack() *Stack {
	return &Stack{}
}

// StackOf builds a stack from top to bottom: StackOf(a, b) has a on top.
// This matches the order in which final stacks are printed and compared.
func StackOf(top ...Value) *Stack {
	st := &Stack{vals: make([]Value, 0, len(top))}
	for i := len(top) - 1; i >= 0; i-- {
		st.vals = append(st.vals, top[i])
	}
	return st
}

// Depth returns the number of values on the stack.
func (st *Stack) Depth() int {
	return len(st.vals)
}

// Push places v on top of the stack.
func (st *Stack) Push(v Value) {
	st.vals = append(st.vals, v)
}

// Pop removes and returns the top value.
func (st *Stack) Pop() (Value, error) {
	if len(st.vals) == 0 {
		return Zero, ErrStackUnderflow
	}
	v := st.vals[len(st.vals)-1]
	st.vals = st.vals[:len(st.vals)-1]
	return v, nil
}

// Peek returns the top value without removing it.
func (st *Stack) Peek() (Value, error) {
	return st.PeekAt(0)
}

// PeekAt returns the value depth positions below the top (PeekAt(0) is
// the top itself) without removing anything.
func (st *Stack) PeekAt(depth int) (Value, error) {
	if depth < 0 || depth >= len(st.vals) {
		return Zero, ErrStackUnderflow
	}
	return st.vals[len(st.vals)-1-depth], nil
}

// Values returns a copy of the stack contents, top first.
func (st *Stack) Values() []Value {
	out := make([]Value, len(st.vals))
	for i, v := range st.vals {
		out[len(st.vals)-1-i] = v
	}
	return out
}

// Clone returns an independent stack with the same contents. Executions
// never share a stack, so cloning is how a caller reruns a program from
// the same starting state.
func (st *Stack) Clone() *Stack {
	vals := make([]Value, len(st.vals))
	copy(vals, st.vals)
	return &Stack{vals: vals}
}

func (st *Stack) String() string {
	parts := make([]string, 0, len(st.vals))
	for _, v := range st.Values() {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
