// errors.go defines the compiler's closed error model. Every error the frontend
// or the lowering engine reports is a *CompileError, formatted "<line>:<col>: <message>".

package ir

import "fmt"

// ErrorKind classifies a CompileError for callers that need to distinguish
// failure categories without parsing the message text.
type ErrorKind int

const (
	// ParseError covers malformed source rejected by the lexer or parser.
	ParseError ErrorKind = iota
	VariableRedefinition
	FunctionRedefinition
	VariableNotDefined
	FunctionNotDefined
	IndexNotInt
	MismatchedType
	MismatchedTypeFunction
	ExpressionVoidType
)

// CompileError is the single error type returned by the frontend and the
// lowering engine. It always carries the source position of the offending
// token or construct.
type CompileError struct {
	Line, Col int
	Kind      ErrorKind
	Msg       string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Errorf builds a *CompileError positioned at line:col.
func Errorf(line, col int, kind ErrorKind, format string, args ...interface{}) *CompileError {
	return &CompileError{Line: line, Col: col, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
