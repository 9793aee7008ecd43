// Package store is a content-addressed program store: programs are keyed
// by their identity hash, so a stored program can never drift from the
// commitment a verifier holds. Backed by sqlite.
package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/trellis/vm"
)

// ErrNotFound indicates the requested program is not in the store.
var ErrNotFound = errors.New("program not found")

// Store persists programs in a sqlite database, keyed by identity hash.
// Safe for concurrent use.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		hash TEXT PRIMARY KEY,
		body BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating programs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a program under its identity hash and returns the hash.
// Storing the same program twice is a no-op.
func (s *Store) Put(p *vm.Program) (vm.Hash, error) {
	h, err := vm.HashProgram(p)
	if err != nil {
		return vm.Hash{}, err
	}
	body, err := vm.MarshalProgram(p)
	if err != nil {
		return vm.Hash{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO programs (hash, body) VALUES (?, ?)",
		h.Hex(), body,
	); err != nil {
		return vm.Hash{}, fmt.Errorf("storing program %s: %w", h.Hex(), err)
	}
	return h, nil
}

// Get loads the program with the given hash. The decoded tree is
// re-hashed and verified against the key, so a corrupted row surfaces as
// an error rather than as a different program.
func (s *Store) Get(h vm.Hash) (*vm.Program, error) {
	s.mu.Lock()
	row := s.db.QueryRow("SELECT body FROM programs WHERE hash = ?", h.Hex())
	var body []byte
	err := row.Scan(&body)
	s.mu.Unlock()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("loading program %s: %w", h.Hex(), err)
	}
	p, err := vm.UnmarshalProgram(body)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", h.Hex(), err)
	}
	got, err := vm.HashProgram(p)
	if err != nil {
		return nil, err
	}
	if got != h {
		return nil, fmt.Errorf("program %s: stored body hashes to %s", h.Hex(), got.Hex())
	}
	return p, nil
}

// Has reports whether the store contains a program with the given hash.
func (s *Store) Has(h vm.Hash) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.db.QueryRow("SELECT 1 FROM programs WHERE hash = ?", h.Hex())
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Hashes returns the identity hashes of every stored program, in
// lexicographic order.
func (s *Store) Hashes() ([]vm.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT hash FROM programs ORDER BY hash")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []vm.Hash
	for rows.Next() {
		var hx string
		if err := rows.Scan(&hx); err != nil {
			return nil, err
		}
		h, err := parseHash(hx)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func parseHash(hx string) (vm.Hash, error) {
	var h vm.Hash
	raw, err := hex.DecodeString(hx)
	if err != nil || len(raw) != len(h) {
		return h, fmt.Errorf("bad hash key %q", hx)
	}
	copy(h[:], raw)
	return h, nil
}
