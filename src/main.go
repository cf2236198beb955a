package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"cmm/src/dot"
	"cmm/src/frontend"
	ll "cmm/src/ir/llvm"
	"cmm/src/util"

	"tinygo.org/x/go-llvm"
)

// run reads, parses and lowers the source named by opt.Src, then drives the
// backend emitter according to the flags in opt. Behaviour is defined
// entirely by the util.Options structure.
func run(opt util.Options, wr *util.Writer) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	root, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	if opt.Dot != "" {
		if err := os.WriteFile(opt.Dot, []byte(dot.Render(root, filepath.Base(opt.Src))), 0644); err != nil {
			return fmt.Errorf("could not write dot file: %s", err)
		}
	}

	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	mod, err := ll.Compile(ctx, filepath.Base(opt.Src), root)
	if err != nil {
		return fmt.Errorf("error: %s", err)
	}
	defer mod.Dispose()

	if opt.LLVMIR {
		wr.WriteString(mod.String())
		return nil
	}

	tm, err := newTargetMachine(opt.Opt)
	if err != nil {
		return fmt.Errorf("could not create target machine: %s", err)
	}
	defer tm.Dispose()

	if opt.Asm {
		buf, err := tm.EmitToMemoryBuffer(mod, llvm.AssemblyFile)
		if err != nil {
			return fmt.Errorf("could not emit assembly: %s", err)
		}
		wr.WriteString(string(buf.Bytes()))
		return nil
	}

	return linkExecutable(mod, tm, opt)
}

// newTargetMachine builds a TargetMachine for the host, at -O0 unless opt
// requests optimization, matching the spec's "compile for the machine
// running the compiler" model rather than the teacher's cross-arch/vendor/
// os flag system.
func newTargetMachine(optimize bool) (llvm.TargetMachine, error) {
	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return llvm.TargetMachine{}, err
	}
	level := llvm.CodeGenLevelNone
	if optimize {
		level = llvm.CodeGenLevelDefault
	}
	return target.CreateTargetMachine(
		triple,
		llvm.GetHostCPUName(),
		llvm.GetHostCPUFeatures(),
		level,
		llvm.RelocDefault,
		llvm.CodeModelDefault,
	), nil
}

// linkExecutable writes mod's assembly to a temporary file, then invokes the
// system's clang to link it against the runtime library io.c into opt.Out
// (or "a.out" if unset).
func linkExecutable(mod llvm.Module, tm llvm.TargetMachine, opt util.Options) error {
	out := opt.Out
	if out == "" {
		out = "a.out"
	}

	buf, err := tm.EmitToMemoryBuffer(mod, llvm.AssemblyFile)
	if err != nil {
		return fmt.Errorf("could not emit assembly: %s", err)
	}

	tmp := out + ".s"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write temporary assembly file: %s", err)
	}
	defer os.Remove(tmp)

	ioC, err := findRuntimeLibrary()
	if err != nil {
		return err
	}

	cmd := exec.Command("clang", tmp, ioC, "-o", out)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("could not link executable: %s", err)
	}
	return nil
}

// findRuntimeLibrary locates io.c, the runtime library implementing
// input()/output(), first at its installed location, then in the current
// directory.
func findRuntimeLibrary() (string, error) {
	candidates := []string{"/usr/local/lib/cmm/io.c", "./runtime/io.c", "./io.c"}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("cannot find io.c in any of: %s", strings.Join(candidates, ", "))
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	wg := sync.WaitGroup{}
	if opt.Out != "" && (opt.Asm || opt.LLVMIR) {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer f.Close()
		util.ListenWrite(f, &wg)
	} else {
		util.ListenWrite(nil, &wg)
	}
	defer util.Close()

	wr := util.NewWriter()
	if err := run(opt, &wr); err != nil {
		fmt.Printf("Error: %s\n", err)
		wr.Close()
		os.Exit(1)
	}
	wr.Close()
	wg.Wait()
}
