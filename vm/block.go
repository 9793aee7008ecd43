// Package vm implements the block-tree execution engine: programs are
// trees of nested execution blocks rather than flat instruction streams.
// The tree statically encodes every control-flow path (both arms of each
// switch, the loop body); at runtime exactly one path executes, selected
// by values on the operand stack. The uniform shape is what lets an
// external collaborator commit to the program cryptographically.
package vm

import "fmt"

// ---------------------------------------------------------------------------
// CodeBlock: a leaf holding a straight-line operation sequence
// ---------------------------------------------------------------------------

// CodeBlock is a non-empty ordered sequence of operations plus an optional
// successor control block. Immutable once constructed, and owned by
// exactly one parent.
type CodeBlock struct {
	ops  []Op
	next *ControlBlock
}

// NewCodeBlock builds a code block. The operation sequence must be
// non-empty; next may be nil.
func NewCodeBlock(ops []Op, next *ControlBlock) (*CodeBlock, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: code block has no operations", ErrMalformedTree)
	}
	owned := make([]Op, len(ops))
	copy(owned, ops)
	return &CodeBlock{ops: owned, next: next}, nil
}

// Ops returns the operation sequence. Callers must not modify it.
func (b *CodeBlock) Ops() []Op { return b.ops }

// Next returns the successor control block, or nil.
func (b *CodeBlock) Next() *ControlBlock { return b.next }

// ---------------------------------------------------------------------------
// ControlBlock: a closed tagged union of the three flow-control shapes
// ---------------------------------------------------------------------------

// BlockKind tags a control block's shape. The set is closed: the executor
// dispatches on the tag exhaustively.
type BlockKind uint8

const (
	// KindGroup wraps a single code block; execution is equivalent to
	// inlining the content.
	KindGroup BlockKind = iota + 1

	// KindSwitch selects one of two code blocks on the top-of-stack value.
	KindSwitch

	// KindLoop repeats its code block while the top of the stack is 1.
	KindLoop
)

var kindNames = map[BlockKind]string{
	KindGroup:  "group",
	KindSwitch: "switch",
	KindLoop:   "loop",
}

func (k BlockKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ControlBlock is a tree node expressing flow control. Which fields are
// set depends on the kind: group and loop use content, switch uses
// trueBranch and falseBranch. Every control block may chain to a next
// sibling. Blocks form a tree, never a graph: each child has exactly one
// owner and there are no cycles.
type ControlBlock struct {
	kind        BlockKind
	content     *CodeBlock
	trueBranch  *CodeBlock
	falseBranch *CodeBlock
	next        *ControlBlock
}

// NewGroup builds a group block around content; next may be nil.
func NewGroup(content *CodeBlock, next *ControlBlock) (*ControlBlock, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: group has no content", ErrMalformedTree)
	}
	return &ControlBlock{kind: KindGroup, content: content, next: next}, nil
}

// NewSwitch builds a switch block. The true branch must begin with
// assert and the false branch with not, assert: the guards are what make
// a branch unreachable under the wrong stack condition, so their absence
// is a construction failure, not a runtime one.
func NewSwitch(trueBranch, falseBranch *CodeBlock, next *ControlBlock) (*ControlBlock, error) {
	if trueBranch == nil || falseBranch == nil {
		return nil, fmt.Errorf("%w: switch is missing a branch", ErrMalformedTree)
	}
	if !beginsWithAssert(trueBranch.ops) {
		return nil, fmt.Errorf("%w: switch true branch must begin with assert", ErrMalformedTree)
	}
	if !beginsWithNotAssert(falseBranch.ops) {
		return nil, fmt.Errorf("%w: switch false branch must begin with not, assert", ErrMalformedTree)
	}
	return &ControlBlock{kind: KindSwitch, trueBranch: trueBranch, falseBranch: falseBranch, next: next}, nil
}

// NewLoop builds a loop block. The body must begin with assert, which
// consumes the 1 that admitted each iteration.
func NewLoop(content *CodeBlock, next *ControlBlock) (*ControlBlock, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: loop has no body", ErrMalformedTree)
	}
	if !beginsWithAssert(content.ops) {
		return nil, fmt.Errorf("%w: loop body must begin with assert", ErrMalformedTree)
	}
	return &ControlBlock{kind: KindLoop, content: content, next: next}, nil
}

// Kind returns the block's shape tag.
func (cb *ControlBlock) Kind() BlockKind { return cb.kind }

// Content returns the owned code block of a group or loop, nil otherwise.
func (cb *ControlBlock) Content() *CodeBlock { return cb.content }

// TrueBranch returns a switch's true branch, nil otherwise.
func (cb *ControlBlock) TrueBranch() *CodeBlock { return cb.trueBranch }

// FalseBranch returns a switch's false branch, nil otherwise.
func (cb *ControlBlock) FalseBranch() *CodeBlock { return cb.falseBranch }

// Next returns the successor control block, or nil.
func (cb *ControlBlock) Next() *ControlBlock { return cb.next }

func beginsWithAssert(ops []Op) bool {
	return len(ops) > 0 && ops[0].Code == OpAssert
}

func beginsWithNotAssert(ops []Op) bool {
	return len(ops) >= 2 && ops[0].Code == OpNot && ops[1].Code == OpAssert
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is a single root control block, or none: the empty program,
// whose execution is a no-op. Programs are read-only for the lifetime of
// execution, so one Program may serve any number of concurrent runs as
// long as each run owns its own stack and evaluator.
type Program struct {
	root *ControlBlock
}

// NewProgram wraps root, which may be nil for the empty program.
func NewProgram(root *ControlBlock) *Program {
	return &Program{root: root}
}

// Root returns the root control block, or nil.
func (p *Program) Root() *ControlBlock { return p.root }

// IsEmpty reports whether the program has no blocks at all.
func (p *Program) IsEmpty() bool { return p.root == nil }

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// TreeVisitor receives the blocks of a stable pre-order traversal. Any
// callback may be nil. EnterControl fires when a control block is
// reached, Code for each owned code block (true branch before false),
// ExitControl once the block's children are done. A code block's own
// next chain is visited inside its parent's bracket; a control block's
// next sibling is visited after the bracket closes.
type TreeVisitor struct {
	EnterControl func(*ControlBlock)
	Code         func(*CodeBlock)
	ExitControl  func(*ControlBlock)
}

// Walk traverses the program in a deterministic pre-order. The order
// depends only on the tree structure, never on map iteration or any
// per-run state, so external collaborators (hashing, pretty-printing)
// see the same sequence on every call.
func (p *Program) Walk(v TreeVisitor) {
	walkControl(p.root, v)
}

func walkControl(cb *ControlBlock, v TreeVisitor) {
	if cb == nil {
		return
	}
	if v.EnterControl != nil {
		v.EnterControl(cb)
	}
	switch cb.kind {
	case KindGroup, KindLoop:
		walkCode(cb.content, v)
	case KindSwitch:
		walkCode(cb.trueBranch, v)
		walkCode(cb.falseBranch, v)
	}
	if v.ExitControl != nil {
		v.ExitControl(cb)
	}
	walkControl(cb.next, v)
}

func walkCode(code *CodeBlock, v TreeVisitor) {
	if code == nil {
		return
	}
	if v.Code != nil {
		v.Code(code)
	}
	walkControl(code.next, v)
}
