package vm

// ---------------------------------------------------------------------------
// Inputs: the values a run starts from
// ---------------------------------------------------------------------------

// Inputs carries everything a run consumes besides the program itself:
// public values pre-seeded on the operand stack and two secret tapes read
// by the read operations. The split mirrors how a prover's inputs are
// classified: stack values are part of the public statement, tape values
// are witness data.
type Inputs struct {
	// Stack is pushed so that Stack[0] ends up on top.
	Stack []Value

	// TapeA and TapeB feed read (tape A) and read2 (one value from
	// each). Reading past the end of a tape is an operation fault.
	TapeA []Value
	TapeB []Value
}

// NewStack builds the initial operand stack for a run.
func (in *Inputs) NewStack() *Stack {
	if in == nil {
		return NewStack()
	}
	return StackOf(in.Stack...)
}

// NewEvaluator builds a fresh stock evaluator over the secret tapes.
// Evaluators hold tape cursors, so each run needs its own.
func (in *Inputs) NewEvaluator() *FieldEvaluator {
	if in == nil {
		return NewFieldEvaluator(nil, nil)
	}
	return NewFieldEvaluator(in.TapeA, in.TapeB)
}

// ValuesOf reduces raw words into field elements.
func ValuesOf(raw ...uint64) []Value {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Value, len(raw))
	for i, v := range raw {
		out[i] = NewValue(v)
	}
	return out
}
