package vm

import "fmt"

// ---------------------------------------------------------------------------
// Op: one opaque executable unit
// ---------------------------------------------------------------------------

// OpCode identifies an operation. The executor interprets no codes beyond
// the two it must recognize syntactically for guard validation (OpAssert
// and OpNot); everything else is the evaluator's business.
type OpCode uint8

const (
	OpNoop OpCode = iota
	OpPush
	OpRead
	OpRead2
	OpDup
	OpDrop
	OpSwap
	OpAdd
	OpSub
	OpMul
	OpNeg
	OpNot
	OpAssert
)

var opNames = [...]string{
	OpNoop:   "noop",
	OpPush:   "push",
	OpRead:   "read",
	OpRead2:  "read2",
	OpDup:    "dup",
	OpDrop:   "drop",
	OpSwap:   "swap",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpNeg:    "neg",
	OpNot:    "not",
	OpAssert: "assert",
}

func (c OpCode) String() string {
	if int(c) < len(opNames) {
		return opNames[c]
	}
	return fmt.Sprintf("op(%d)", uint8(c))
}

// Op is a single operation: a code plus an immediate operand (only push
// uses the immediate; it is zero elsewhere).
type Op struct {
	Code OpCode
	Imm  Value
}

// Encode returns the operation's 128-bit form: the code in the high word,
// the immediate in the low word. This encoding is what the hash
// collaborator commits to.
func (op Op) Encode() (hi, lo uint64) {
	return uint64(op.Code), uint64(op.Imm)
}

func (op Op) String() string {
	if op.Code == OpPush {
		return fmt.Sprintf("push(%s)", op.Imm)
	}
	return op.Code.String()
}

// ---------------------------------------------------------------------------
// Op constructors
// ---------------------------------------------------------------------------

// Push returns an operation that places v (reduced into the field) on the
// stack.
func Push(v uint64) Op { return Op{Code: OpPush, Imm: NewValue(v)} }

func Noop() Op   { return Op{Code: OpNoop} }
func Read() Op   { return Op{Code: OpRead} }
func Read2() Op  { return Op{Code: OpRead2} }
func Dup() Op    { return Op{Code: OpDup} }
func Drop() Op   { return Op{Code: OpDrop} }
func Swap() Op   { return Op{Code: OpSwap} }
func Add() Op    { return Op{Code: OpAdd} }
func Sub() Op    { return Op{Code: OpSub} }
func Mul() Op    { return Op{Code: OpMul} }
func Neg() Op    { return Op{Code: OpNeg} }
func Not() Op    { return Op{Code: OpNot} }
func Assert() Op { return Op{Code: OpAssert} }

// ---------------------------------------------------------------------------
// Evaluator: the pluggable instruction-set collaborator
// ---------------------------------------------------------------------------

// Evaluator applies one operation to the stack. The executor owns no
// instruction semantics; one Evaluator implementation exists per concrete
// instruction set. Any error is fatal to the run.
type Evaluator interface {
	Apply(op Op, st *Stack) error
}
