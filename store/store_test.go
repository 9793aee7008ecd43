package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/trellis/vm"
)

func testProgram(t *testing.T, imm uint64) *vm.Program {
	t.Helper()
	code, err := vm.NewCodeBlock([]vm.Op{vm.Push(imm), vm.Drop()}, nil)
	if err != nil {
		t.Fatalf("code block: %v", err)
	}
	root, err := vm.NewGroup(code, nil)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	return vm.NewProgram(root)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	p := testProgram(t, 7)

	h, err := s.Put(p)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	want, err := vm.HashProgram(p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h != want {
		t.Fatalf("put returned %s, want %s", h.Hex(), want.Hex())
	}

	back, err := s.Get(h)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, err := vm.HashProgram(back)
	if err != nil {
		t.Fatalf("hash loaded: %v", err)
	}
	if got != h {
		t.Fatalf("loaded program hashes to %s, want %s", got.Hex(), h.Hex())
	}
}

func TestPutIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	p := testProgram(t, 7)

	h1, err := s.Put(p)
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	h2, err := s.Put(p)
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("puts disagree: %s vs %s", h1.Hex(), h2.Hex())
	}
	hashes, err := s.Hashes()
	if err != nil {
		t.Fatalf("hashes: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("store holds %d programs, want 1", len(hashes))
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(vm.Hash{1, 2, 3}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHasAndHashes(t *testing.T) {
	s := openTestStore(t)
	h1, err := s.Put(testProgram(t, 1))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	h2, err := s.Put(testProgram(t, 2))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := s.Has(h1)
	if err != nil || !ok {
		t.Fatalf("Has(stored) = %v, %v; want true", ok, err)
	}
	ok, err = s.Has(vm.Hash{9})
	if err != nil || ok {
		t.Fatalf("Has(missing) = %v, %v; want false", ok, err)
	}

	hashes, err := s.Hashes()
	if err != nil {
		t.Fatalf("hashes: %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("store holds %d programs, want 2", len(hashes))
	}
	seen := map[string]bool{}
	for _, h := range hashes {
		seen[h.Hex()] = true
	}
	if !seen[h1.Hex()] || !seen[h2.Hex()] {
		t.Fatalf("hashes %v missing %s or %s", hashes, h1.Hex(), h2.Hex())
	}
}
