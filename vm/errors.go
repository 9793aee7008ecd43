package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrMalformedTree is returned by the block constructors: empty code
	// block, or a missing guard prefix on a switch branch or loop body.
	// It never occurs mid-execution.
	ErrMalformedTree = errors.New("malformed tree")

	// ErrStackUnderflow means an operation or branch test required a
	// value that was not on the stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrNonBinaryCondition means a switch or loop inspected a top-of-
	// stack value other than 0 or 1 where a binary decision was required.
	ErrNonBinaryCondition = errors.New("non-binary condition")

	// ErrBranchGuardViolation means a branch's leading guard rejected the
	// value that caused the branch to be selected: the dispatch peek and
	// the guard disagreed.
	ErrBranchGuardViolation = errors.New("branch guard violation")

	// ErrAssertFailed is raised by the assert operation when the popped
	// value is not 1.
	ErrAssertFailed = errors.New("assertion failed")

	// ErrTapeExhausted is raised by a read operation when its secret
	// input tape has no values left.
	ErrTapeExhausted = errors.New("input tape exhausted")
)

// ExecError ties a failure to the position in the tree where it occurred.
// Every failure is fatal to the run; the stack is left exactly as the
// failing step left it.
type ExecError struct {
	// Path names the chain of blocks descended from the root, e.g.
	// "root.loop.body.switch.true".
	Path string

	// OpIndex is the index of the failing operation within its code
	// block, or -1 when the failure was a control block's own branch test.
	OpIndex int

	// Err is the underlying failure.
	Err error
}

func (e *ExecError) Error() string {
	if e.OpIndex < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: op %d: %v", e.Path, e.OpIndex, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
