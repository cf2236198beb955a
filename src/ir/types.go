// types.go defines the closed set of C-- types and their projection onto LLVM types.

package ir

import "tinygo.org/x/go-llvm"

// Type is one of the four type variants the language supports.
type Type int

const (
	Void Type = iota
	Int
	IntArray
	IntPtr
)

// String returns the surface-syntax spelling of t, used in error messages.
func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Int:
		return "int"
	case IntArray:
		return "int[]"
	case IntPtr:
		return "int*"
	}
	return "<invalid type>"
}

// IsArithmetic reports whether values of t may appear as binary operator operands.
func (t Type) IsArithmetic() bool {
	return t == Int || t == IntPtr
}

// LLVM projects t onto its corresponding tinygo.org/x/go-llvm type under ctx.
// arrLen is only consulted when t is IntArray.
func (t Type) LLVM(ctx llvm.Context, arrLen int) llvm.Type {
	switch t {
	case Void:
		return ctx.VoidType()
	case Int:
		return ctx.Int32Type()
	case IntPtr:
		return llvm.PointerType(ctx.Int32Type(), 0)
	case IntArray:
		return llvm.ArrayType(ctx.Int32Type(), arrLen)
	}
	panic("ir: unreachable type in LLVM projection")
}

// Zero returns the zero-valued constant of t, used for implicit trailing returns.
func (t Type) Zero(ctx llvm.Context) llvm.Value {
	switch t {
	case Int:
		return llvm.ConstInt(ctx.Int32Type(), 0, false)
	case IntPtr:
		return llvm.ConstNull(llvm.PointerType(ctx.Int32Type(), 0))
	}
	panic("ir: no zero value for type " + t.String())
}
