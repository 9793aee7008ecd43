package vm

import (
	"crypto/sha256"
	"encoding/hex"
)

// ---------------------------------------------------------------------------
// Program identity hash
// ---------------------------------------------------------------------------

// Hash is a program's 32-byte content identity.
type Hash [32]byte

// Hex returns the lowercase hex form, used as the store key.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// HashProgram computes the reference identity hash of a program: sha256
// over its canonical wire encoding. Because the encoding is
// deterministic and faithful, two programs share a hash exactly when
// they are structurally identical, down to every operation immediate on
// every unexecuted branch. External hash collaborators that need a
// different mixing scheme can derive their own commitment from Walk;
// this hash is what the store and the CLI use.
func HashProgram(p *Program) (Hash, error) {
	data, err := MarshalProgram(p)
	if err != nil {
		return Hash{}, err
	}
	return Hash(sha256.Sum256(data)), nil
}
