package vm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Executor: the traversal engine
// ---------------------------------------------------------------------------

// Executor walks a program tree, applying each block's execution
// semantics to an operand stack. It never mutates the tree; the stack is
// the only channel of communication between blocks. One Executor may be
// reused across runs, but a run is strictly sequential: one stack, one
// traversal cursor.
type Executor struct {
	eval Evaluator
	log  commonlog.Logger
}

// NewExecutor returns an executor backed by the given evaluator. The
// evaluator owns all instruction semantics; the executor only routes
// control through the tree.
func NewExecutor(eval Evaluator) *Executor {
	return &Executor{
		eval: eval,
		log:  commonlog.GetLogger("trellis.vm"),
	}
}

// Execute runs the program against the stack. On success the stack holds
// the final state; on failure the returned error is an *ExecError
// carrying the tree path and operation index of the failing step, and
// the stack is left exactly as the failing step left it. Every failure
// is fatal: no retry, no rollback.
func (ex *Executor) Execute(p *Program, st *Stack) error {
	runID := uuid.NewString()
	ex.log.Debugf("run %s: starting at depth %d", runID, st.Depth())

	if p == nil || p.IsEmpty() {
		ex.log.Debugf("run %s: empty program", runID)
		return nil
	}
	if err := ex.execControl(p.Root(), st, "root"); err != nil {
		ex.log.Errorf("run %s: %s", runID, err)
		return err
	}
	ex.log.Debugf("run %s: done at depth %d", runID, st.Depth())
	return nil
}

// execControl executes a control block and then follows its next chain.
func (ex *Executor) execControl(cb *ControlBlock, st *Stack, path string) error {
	for ; cb != nil; cb = cb.next {
		var err error
		switch cb.kind {
		case KindGroup:
			err = ex.execCode(cb.content, st, path+".group")
		case KindSwitch:
			err = ex.execSwitch(cb, st, path+".switch")
		case KindLoop:
			err = ex.execLoop(cb, st, path+".loop")
		default:
			err = &ExecError{Path: path, OpIndex: -1, Err: fmt.Errorf("%w: unknown block kind %d", ErrMalformedTree, cb.kind)}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// execSwitch peeks the condition and dispatches to one branch. The peek
// is only a dispatch hint: the selected branch's own leading guard
// performs the authoritative check and consumes the value.
func (ex *Executor) execSwitch(cb *ControlBlock, st *Stack, path string) error {
	cond, err := st.Peek()
	if err != nil {
		return &ExecError{Path: path, OpIndex: -1, Err: err}
	}
	switch cond {
	case One:
		return ex.execGuarded(cb.trueBranch, st, path+".true", 1)
	case Zero:
		return ex.execGuarded(cb.falseBranch, st, path+".false", 2)
	default:
		return &ExecError{Path: path, OpIndex: -1,
			Err: fmt.Errorf("%w: top of stack is %s", ErrNonBinaryCondition, cond)}
	}
}

// execLoop runs the body while the top of the stack is 1. Each admitted
// iteration's 1 is consumed by the body's leading assert; the 0 that
// ends the loop (or skips it entirely) is consumed by the loop node
// itself, so the net stack effect does not depend on the iteration
// count.
func (ex *Executor) execLoop(cb *ControlBlock, st *Stack, path string) error {
	for {
		cond, err := st.Peek()
		if err != nil {
			return &ExecError{Path: path, OpIndex: -1, Err: err}
		}
		switch cond {
		case One:
			if err := ex.execGuarded(cb.content, st, path+".body", 1); err != nil {
				return err
			}
		case Zero:
			if _, err := st.Pop(); err != nil {
				return &ExecError{Path: path, OpIndex: -1, Err: err}
			}
			return nil
		default:
			return &ExecError{Path: path, OpIndex: -1,
				Err: fmt.Errorf("%w: top of stack is %s", ErrNonBinaryCondition, cond)}
		}
	}
}

// execCode executes a code block's operations in order, then follows the
// block's next chain.
func (ex *Executor) execCode(code *CodeBlock, st *Stack, path string) error {
	return ex.execGuarded(code, st, path, 0)
}

// execGuarded is execCode with the first guardLen operations treated as
// the branch guard: an assertion failure there means the dispatch peek
// and the guard disagreed, which is reported as a guard violation rather
// than a plain operation fault.
func (ex *Executor) execGuarded(code *CodeBlock, st *Stack, path string, guardLen int) error {
	for i, op := range code.ops {
		if err := ex.eval.Apply(op, st); err != nil {
			if i < guardLen && errors.Is(err, ErrAssertFailed) {
				err = fmt.Errorf("%w: %s", ErrBranchGuardViolation, err)
			}
			return &ExecError{Path: path, OpIndex: i, Err: err}
		}
	}
	if code.next != nil {
		return ex.execControl(code.next, st, path)
	}
	return nil
}
