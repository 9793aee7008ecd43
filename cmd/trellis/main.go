// Trellis CLI - runs block-tree programs and manages the program store.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/trellis/runfile"
	"github.com/chazu/trellis/store"
	"github.com/chazu/trellis/vm"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (debug logging)")
	hashOnly := flag.Bool("hash", false, "Print the program's identity hash and exit")
	dump := flag.Bool("dump", false, "Print the program's tree structure and exit")
	putStore := flag.Bool("store", false, "Store the program after a successful run (needs store.path in trellis.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trellis [options] [dir|program.cbor]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the program described by trellis.toml in the given directory\n")
		fmt.Fprintf(os.Stderr, "(default \".\"), or a bare .cbor program with empty inputs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  trellis                # Run ./trellis.toml\n")
		fmt.Fprintf(os.Stderr, "  trellis ./examples/sum # Run a specific run directory\n")
		fmt.Fprintf(os.Stderr, "  trellis -hash prog.cbor\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	target := "."
	if flag.NArg() > 0 {
		target = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(target, *hashOnly, *dump, *putStore); err != nil {
		fmt.Fprintf(os.Stderr, "trellis: %v\n", err)
		os.Exit(1)
	}
}

func run(target string, hashOnly, dump, putStore bool) error {
	var (
		rf  *runfile.Runfile
		in  *vm.Inputs
		err error
	)
	progPath := target
	if !strings.HasSuffix(target, ".cbor") {
		rf, err = runfile.Load(target)
		if err != nil {
			return err
		}
		progPath = rf.ProgramPath()
		in, err = rf.VMInputs()
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(progPath)
	if err != nil {
		return fmt.Errorf("cannot read program: %w", err)
	}
	prog, err := vm.UnmarshalProgram(data)
	if err != nil {
		return err
	}

	if hashOnly {
		h, err := vm.HashProgram(prog)
		if err != nil {
			return err
		}
		fmt.Println(h.Hex())
		return nil
	}
	if dump {
		fmt.Print(vm.FormatProgram(prog))
		return nil
	}

	st := in.NewStack()
	ex := vm.NewExecutor(in.NewEvaluator())
	if err := ex.Execute(prog, st); err != nil {
		return err
	}
	fmt.Println(st)

	if putStore {
		if rf == nil || rf.StorePath() == "" {
			return fmt.Errorf("-store needs store.path in trellis.toml")
		}
		s, err := store.Open(rf.StorePath())
		if err != nil {
			return err
		}
		defer s.Close()
		h, err := s.Put(prog)
		if err != nil {
			return err
		}
		fmt.Printf("stored %s\n", h.Hex())
	}
	return nil
}
