package vm

import (
	"strings"
	"testing"
)

func TestFormatProgram(t *testing.T) {
	root := mustLoop(t, mustCode(t, nil, Assert(), Push(3), Add()), nil)
	out := FormatProgram(NewProgram(root))
	want := "loop\n  [assert push(3) add]\n"
	if out != want {
		t.Fatalf("format = %q, want %q", out, want)
	}
}

func TestFormatNestedProgram(t *testing.T) {
	sw := mustSwitch(t,
		mustCode(t, nil, Assert()),
		mustCode(t, nil, Not(), Assert()),
		nil)
	root := mustGroup(t, mustCode(t, sw, Push(1)), nil)
	out := FormatProgram(NewProgram(root))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{"group", "  [push(1)]", "  switch", "    [assert]", "    [not assert]"}
	if len(lines) != len(want) {
		t.Fatalf("format = %q, want %d lines", out, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFormatEmptyProgram(t *testing.T) {
	if got := FormatProgram(NewProgram(nil)); got != "(empty program)\n" {
		t.Fatalf("format = %q", got)
	}
}
