// Package runfile handles trellis.toml run configuration: which program
// to execute and the inputs to run it with.
package runfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/chazu/trellis/vm"
)

// Runfile represents a trellis.toml run configuration.
type Runfile struct {
	Program ProgramConfig `toml:"program"`
	Inputs  InputsConfig  `toml:"inputs"`
	Store   StoreConfig   `toml:"store"`

	// Dir is the directory containing the trellis.toml file (set at load
	// time).
	Dir string `toml:"-"`
}

// ProgramConfig locates the program to run.
type ProgramConfig struct {
	// Path points at the CBOR-encoded program, relative to the runfile's
	// directory unless absolute.
	Path string `toml:"path"`
}

// InputsConfig carries the run's inputs. Values are decimal strings
// because field elements occupy the full 64-bit range, which TOML
// integers (signed) cannot represent.
type InputsConfig struct {
	Stack []string `toml:"stack"`
	TapeA []string `toml:"tape-a"`
	TapeB []string `toml:"tape-b"`
}

// StoreConfig optionally points at a program store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Load parses a trellis.toml file from the given directory.
func Load(dir string) (*Runfile, error) {
	path := filepath.Join(dir, "trellis.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var r Runfile
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if r.Program.Path == "" {
		return nil, fmt.Errorf("%s: program.path is required", path)
	}
	r.Dir = dir
	return &r, nil
}

// ProgramPath resolves the program file location.
func (r *Runfile) ProgramPath() string {
	return r.resolve(r.Program.Path)
}

// StorePath resolves the store location, or "" if no store is
// configured.
func (r *Runfile) StorePath() string {
	if r.Store.Path == "" {
		return ""
	}
	return r.resolve(r.Store.Path)
}

func (r *Runfile) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.Dir, path)
}

// VMInputs parses the configured inputs into field elements. Values at
// or above the field modulus are rejected rather than silently reduced.
func (r *Runfile) VMInputs() (*vm.Inputs, error) {
	stack, err := parseValues("inputs.stack", r.Inputs.Stack)
	if err != nil {
		return nil, err
	}
	tapeA, err := parseValues("inputs.tape-a", r.Inputs.TapeA)
	if err != nil {
		return nil, err
	}
	tapeB, err := parseValues("inputs.tape-b", r.Inputs.TapeB)
	if err != nil {
		return nil, err
	}
	return &vm.Inputs{Stack: stack, TapeA: tapeA, TapeB: tapeB}, nil
}

func parseValues(field string, raw []string) ([]vm.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]vm.Value, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %q is not a valid value: %w", field, i, s, err)
		}
		if v >= vm.Modulus {
			return nil, fmt.Errorf("%s[%d]: %d is outside the field", field, i, v)
		}
		out[i] = vm.NewValue(v)
	}
	return out, nil
}
