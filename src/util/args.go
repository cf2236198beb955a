package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the parsed command line configuration for one compiler
// invocation.
type Options struct {
	Src    string // Path to source file.
	Out    string // Path to output file.
	Dot    string // Path to AST DOT output file, empty if not requested.
	Opt    bool   // Set true if the backend should optimize (-O).
	Asm    bool   // Set true to emit native assembly (-s) instead of linking an executable.
	LLVMIR bool   // Set true to emit LLVM-IR text (--llvmir) instead of linking an executable.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "cmm compiler 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-O":
			opt.Opt = true
		case "-s":
			opt.Asm = true
		case "--llvmir":
			opt.LLVMIR = true
		case "-o":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Out = args[i1+1]
			i1++
		case "-d":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Dot = args[i1+1]
			i1++
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Src = args[i1]
		}
	}
	if opt.Src == "" {
		return opt, fmt.Errorf("missing source file argument")
	}
	if opt.Asm && opt.LLVMIR {
		return opt, fmt.Errorf("-s and --llvmir are mutually exclusive")
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, --help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-v, --version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-o <path>\tPath of the output file.")
	_, _ = fmt.Fprintln(w, "-d <path>\tWrite a Graphviz DOT rendering of the AST to path.")
	_, _ = fmt.Fprintln(w, "-O\tEnable backend optimization.")
	_, _ = fmt.Fprintln(w, "-s\tEmit native assembly instead of a linked executable.")
	_, _ = fmt.Fprintln(w, "--llvmir\tEmit LLVM-IR text instead of a linked executable.")
	_ = w.Flush()
}
