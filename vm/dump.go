package vm

import (
	"fmt"
	"strings"
)

// FormatProgram renders the tree structure for inspection, one block per
// line, children indented under their parent. Built on Walk, so the
// output order matches what hash collaborators traverse.
func FormatProgram(p *Program) string {
	if p == nil || p.IsEmpty() {
		return "(empty program)\n"
	}
	var b strings.Builder
	depth := 0
	p.Walk(TreeVisitor{
		EnterControl: func(cb *ControlBlock) {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), cb.kind)
			depth++
		},
		Code: func(code *CodeBlock) {
			ops := make([]string, len(code.ops))
			for i, op := range code.ops {
				ops[i] = op.String()
			}
			fmt.Fprintf(&b, "%s[%s]\n", strings.Repeat("  ", depth), strings.Join(ops, " "))
		},
		ExitControl: func(*ControlBlock) {
			depth--
		},
	})
	return b.String()
}
