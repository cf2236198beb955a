// env.go implements the symbol environment: the scope stack that binds
// variable and function names to their LLVM addresses/values while the
// module assembler walks the AST. The core compiler is single-threaded and
// strictly sequential, so unlike the teacher's symTab this holds no mutex.

package llvm

import (
	"cmm/src/ir"

	"tinygo.org/x/go-llvm"
)

// variable is a bound name's compile-time type and its storage address.
// addr always points at an alloca (locals/params) or a global (file-scope
// variables); for IntArray locals and for decayed array parameters, addr is
// the *pointer slot* produced by array decay, not the array alloca itself.
type variable struct {
	typ    ir.Type
	arrLen int
	addr   llvm.Value
}

// function is a bound function name's signature and its LLVM value.
type function struct {
	ret    ir.Type
	params []ir.Type
	fn     llvm.Value
}

// env is the symbol environment. scopes is a stack of frames, innermost
// last; name resolution searches scopes from the end backwards before
// falling back to globals, mirroring block scoping rules.
type env struct {
	globals map[string]*variable
	funcs   map[string]*function
	scopes  []map[string]*variable
}

func newEnv() *env {
	return &env{
		globals: make(map[string]*variable),
		funcs:   make(map[string]*function),
	}
}

// pushScope opens a new, empty lexical scope frame.
func (e *env) pushScope() {
	e.scopes = append(e.scopes, make(map[string]*variable))
}

// popScope discards the innermost scope frame.
func (e *env) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// declareLocal binds name to v in the innermost scope frame. It reports
// redefinition only against that frame, per block-scoping/shadowing rules.
func (e *env) declareLocal(name string, v *variable) bool {
	top := e.scopes[len(e.scopes)-1]
	if _, exists := top[name]; exists {
		return false
	}
	top[name] = v
	return true
}

// declareGlobal binds name to v at file scope.
func (e *env) declareGlobal(name string, v *variable) bool {
	if _, exists := e.globals[name]; exists {
		return false
	}
	e.globals[name] = v
	return true
}

// declareFunc binds name to f globally.
func (e *env) declareFunc(name string, f *function) bool {
	if _, exists := e.funcs[name]; exists {
		return false
	}
	e.funcs[name] = f
	return true
}

// lookup resolves name against the scope stack innermost-first, then
// globals.
func (e *env) lookup(name string) (*variable, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	if v, ok := e.globals[name]; ok {
		return v, true
	}
	return nil, false
}

// lookupFunc resolves a function name.
func (e *env) lookupFunc(name string) (*function, bool) {
	f, ok := e.funcs[name]
	return f, ok
}
