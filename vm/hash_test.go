package vm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashIsDeterministic(t *testing.T) {
	p := wireFixture(t)
	h1, err := HashProgram(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashProgram(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash changed between calls: %s vs %s", h1.Hex(), h2.Hex())
	}
}

// TestHashSeesEveryBranch verifies that the identity hash commits to the
// whole tree, including paths a run never takes: changing one immediate
// deep in the false branch changes the hash.
func TestHashSeesEveryBranch(t *testing.T) {
	build := func(falseImm uint64) *Program {
		sw := mustSwitch(t,
			mustCode(t, nil, Assert(), Push(1)),
			mustCode(t, nil, Not(), Assert(), Push(falseImm)),
			nil)
		return NewProgram(sw)
	}
	h1, err := HashProgram(build(0))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashProgram(build(99))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("hash does not depend on unexecuted branch content")
	}
}

func TestHashDistinguishesShapes(t *testing.T) {
	body := func() *CodeBlock { return mustCode(t, nil, Assert(), Drop()) }
	loop := NewProgram(mustLoop(t, body(), nil))
	group := NewProgram(mustGroup(t, body(), nil))

	hLoop, err := HashProgram(loop)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hGroup, err := HashProgram(group)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hLoop == hGroup {
		t.Fatal("loop and group with identical code hash the same")
	}
}

// TestGoldenHash pins the identity hash of a fixed program. The golden
// file is created on first run; afterwards any drift in the wire format
// or hash construction fails here.
func TestGoldenHash(t *testing.T) {
	p := wireFixture(t)
	h, err := HashProgram(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	goldenDir := "testdata"
	if err := os.MkdirAll(goldenDir, 0o755); err != nil {
		t.Fatalf("create testdata dir: %v", err)
	}
	golden := filepath.Join(goldenDir, "fixture_hash.golden")

	want, err := os.ReadFile(golden)
	if os.IsNotExist(err) {
		if err := os.WriteFile(golden, []byte(h.Hex()+"\n"), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		t.Logf("created golden file %s", golden)
		return
	}
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if got := h.Hex() + "\n"; got != string(want) {
		t.Errorf("hash drifted:\n  got  %s  want %s", got, want)
	}
}
