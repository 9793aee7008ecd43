package vm

import "fmt"

// ---------------------------------------------------------------------------
// FieldEvaluator: the stock instruction set
// ---------------------------------------------------------------------------

// FieldEvaluator implements the stock field-arithmetic instruction set.
// It holds the read cursors for the two secret input tapes, so a fresh
// evaluator is needed per run (the block tree itself carries no state and
// can be shared freely).
type FieldEvaluator struct {
	tapeA []Value
	tapeB []Value
	posA  int
	posB  int
}

// NewFieldEvaluator returns an evaluator reading from the given secret
// input tapes. Either tape may be nil.
func NewFieldEvaluator(tapeA, tapeB []Value) *FieldEvaluator {
	return &FieldEvaluator{tapeA: tapeA, tapeB: tapeB}
}

// Apply executes one operation against the stack.
func (ev *FieldEvaluator) Apply(op Op, st *Stack) error {
	switch op.Code {
	case OpNoop:
		return nil

	case OpPush:
		st.Push(op.Imm)
		return nil

	case OpRead:
		v, err := ev.readA()
		if err != nil {
			return err
		}
		st.Push(v)
		return nil

	case OpRead2:
		a, err := ev.readA()
		if err != nil {
			return err
		}
		b, err := ev.readB()
		if err != nil {
			return err
		}
		st.Push(a)
		st.Push(b)
		return nil

	case OpDup:
		v, err := st.Peek()
		if err != nil {
			return err
		}
		st.Push(v)
		return nil

	case OpDrop:
		_, err := st.Pop()
		return err

	case OpSwap:
		a, err := st.Pop()
		if err != nil {
			return err
		}
		b, err := st.Pop()
		if err != nil {
			return err
		}
		st.Push(a)
		st.Push(b)
		return nil

	case OpAdd:
		return ev.binary(st, Value.Add)
	case OpSub:
		return ev.binary(st, Value.Sub)
	case OpMul:
		return ev.binary(st, Value.Mul)

	case OpNeg:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		st.Push(v.Neg())
		return nil

	case OpNot:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		st.Push(v.Not())
		return nil

	case OpAssert:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		if v != One {
			return fmt.Errorf("%w: expected 1, got %s", ErrAssertFailed, v)
		}
		return nil

	default:
		return fmt.Errorf("unknown opcode %s", op.Code)
	}
}

// binary pops b then a and pushes f(a, b).
func (ev *FieldEvaluator) binary(st *Stack, f func(Value, Value) Value) error {
	b, err := st.Pop()
	if err != nil {
		return err
	}
	a, err := st.Pop()
	if err != nil {
		return err
	}
	st.Push(f(a, b))
	return nil
}

func (ev *FieldEvaluator) readA() (Value, error) {
	if ev.posA >= len(ev.tapeA) {
		return Zero, fmt.Errorf("%w: tape A", ErrTapeExhausted)
	}
	v := ev.tapeA[ev.posA]
	ev.posA++
	return v, nil
}

func (ev *FieldEvaluator) readB() (Value, error) {
	if ev.posB >= len(ev.tapeB) {
		return Zero, fmt.Errorf("%w: tape B", ErrTapeExhausted)
	}
	v := ev.tapeB[ev.posB]
	ev.posB++
	return v, nil
}
