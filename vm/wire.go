package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Wire format: canonical CBOR encoding of program trees
// ---------------------------------------------------------------------------

// wireVersion guards against format drift; bump on any incompatible
// change to the wire structs.
const wireVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireOp struct {
	Code uint8  `cbor:"1,keyasint"`
	Imm  uint64 `cbor:"2,keyasint,omitempty"`
}

type wireCode struct {
	Ops  []wireOp     `cbor:"1,keyasint"`
	Next *wireControl `cbor:"2,keyasint,omitempty"`
}

type wireControl struct {
	Kind  uint8        `cbor:"1,keyasint"`
	Body  *wireCode    `cbor:"2,keyasint,omitempty"`
	True  *wireCode    `cbor:"3,keyasint,omitempty"`
	False *wireCode    `cbor:"4,keyasint,omitempty"`
	Next  *wireControl `cbor:"5,keyasint,omitempty"`
}

type wireProgram struct {
	Version uint8        `cbor:"1,keyasint"`
	Root    *wireControl `cbor:"2,keyasint,omitempty"`
}

// MarshalProgram serializes a program to canonical CBOR bytes. The
// encoding is deterministic: the same tree always yields the same bytes,
// which is what makes hashing the encoding a stable commitment.
func MarshalProgram(p *Program) ([]byte, error) {
	w := wireProgram{Version: wireVersion}
	if p != nil {
		w.Root = encodeControl(p.root)
	}
	return cborEncMode.Marshal(&w)
}

// UnmarshalProgram deserializes a program from CBOR bytes. The tree is
// rebuilt through the block constructors, so a byte stream describing a
// malformed tree (empty code block, missing guard prefix) is rejected
// with ErrMalformedTree rather than admitted.
func UnmarshalProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("vm: unmarshal program: %w", err)
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("vm: unsupported program version %d", w.Version)
	}
	root, err := decodeControl(w.Root)
	if err != nil {
		return nil, err
	}
	return NewProgram(root), nil
}

func encodeControl(cb *ControlBlock) *wireControl {
	if cb == nil {
		return nil
	}
	return &wireControl{
		Kind:  uint8(cb.kind),
		Body:  encodeCode(cb.content),
		True:  encodeCode(cb.trueBranch),
		False: encodeCode(cb.falseBranch),
		Next:  encodeControl(cb.next),
	}
}

func encodeCode(code *CodeBlock) *wireCode {
	if code == nil {
		return nil
	}
	ops := make([]wireOp, len(code.ops))
	for i, op := range code.ops {
		hi, lo := op.Encode()
		ops[i] = wireOp{Code: uint8(hi), Imm: lo}
	}
	return &wireCode{Ops: ops, Next: encodeControl(code.next)}
}

func decodeControl(w *wireControl) (*ControlBlock, error) {
	if w == nil {
		return nil, nil
	}
	next, err := decodeControl(w.Next)
	if err != nil {
		return nil, err
	}
	switch BlockKind(w.Kind) {
	case KindGroup:
		content, err := decodeCode(w.Body)
		if err != nil {
			return nil, err
		}
		return NewGroup(content, next)
	case KindSwitch:
		trueBranch, err := decodeCode(w.True)
		if err != nil {
			return nil, err
		}
		falseBranch, err := decodeCode(w.False)
		if err != nil {
			return nil, err
		}
		return NewSwitch(trueBranch, falseBranch, next)
	case KindLoop:
		content, err := decodeCode(w.Body)
		if err != nil {
			return nil, err
		}
		return NewLoop(content, next)
	default:
		return nil, fmt.Errorf("%w: unknown block kind %d", ErrMalformedTree, w.Kind)
	}
}

func decodeCode(w *wireCode) (*CodeBlock, error) {
	if w == nil {
		return nil, nil
	}
	next, err := decodeControl(w.Next)
	if err != nil {
		return nil, err
	}
	ops := make([]Op, len(w.Ops))
	for i, wop := range w.Ops {
		ops[i] = Op{Code: OpCode(wop.Code), Imm: NewValue(wop.Imm)}
	}
	return NewCodeBlock(ops, next)
}
