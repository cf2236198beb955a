// node.go defines the AST produced by the frontend and consumed by the lowering engine.
//
// Unlike a generic tagged-variant tree, each NodeType uses a fixed subset of
// the fields below; see the comment on each NodeType constant for which
// fields it populates.

package ir

import (
	"fmt"
	"strings"
)

// NodeType tags a Node with the syntactic construct it represents.
type NodeType int

const (
	// Program is the root node. Decls holds top-level FuncDecl/VarDecl nodes.
	Program NodeType = iota
	// FuncDecl: Name, VType (return type), Params ([]*Node of Param), Body (*Node Block).
	FuncDecl
	// Param: Name, VType. Never appears outside a FuncDecl's Params slice.
	Param
	// VarDecl: Name, VType, ArrLen (when VType == IntArray).
	VarDecl
	// Block: Decls ([]*Node VarDecl), Stmts ([]*Node statement).
	Block
	// If: Cond, Then, Else (Else is nil when there is no else-branch).
	If
	// While: Cond, Then.
	While
	// Return: Expr (nil for a bare "return;").
	Return
	// ExprStmt: Expr, an expression evaluated for side effect.
	ExprStmt
	// Assign: Left (Variable), Right (expression).
	Assign
	// BinaryExpr: Op, Left, Right.
	BinaryExpr
	// CallExpr: Name, Args ([]*Node expression).
	CallExpr
	// Variable: Name, Index (nil unless subscripted).
	Variable
	// IntLit: Value.
	IntLit
)

// Node is one node of the AST. Line and Col locate the construct in source
// for diagnostics; they are the position of the node's leading token, except
// for a BinaryExpr built from an infix operator, which is positioned at the
// operator.
type Node struct {
	Typ  NodeType
	Line int
	Col  int

	Name   string
	VType  Type
	ArrLen int
	Op     Operator
	Value  int32

	Decls  []*Node
	Params []*Node
	Stmts  []*Node
	Args   []*Node

	Body  *Node
	Cond  *Node
	Then  *Node
	Else  *Node
	Expr  *Node
	Left  *Node
	Right *Node
	Index *Node
}

// String returns a short label for n, used by Print and the dot renderer.
func (n *Node) String() string {
	switch n.Typ {
	case Program:
		return "Program"
	case FuncDecl:
		return fmt.Sprintf("FuncDecl %s %s", n.VType, n.Name)
	case Param:
		return fmt.Sprintf("Param %s %s", n.VType, n.Name)
	case VarDecl:
		if n.VType == IntArray {
			return fmt.Sprintf("VarDecl int %s[%d]", n.Name, n.ArrLen)
		}
		return fmt.Sprintf("VarDecl %s %s", n.VType, n.Name)
	case Block:
		return "Block"
	case If:
		return "If"
	case While:
		return "While"
	case Return:
		return "Return"
	case ExprStmt:
		return "ExprStmt"
	case Assign:
		return "Assign"
	case BinaryExpr:
		return fmt.Sprintf("BinaryExpr %s", n.Op)
	case CallExpr:
		return fmt.Sprintf("CallExpr %s", n.Name)
	case Variable:
		return fmt.Sprintf("Variable %s", n.Name)
	case IntLit:
		return fmt.Sprintf("IntLit %d", n.Value)
	}
	return "<invalid node>"
}

// children returns n's direct AST children in source order, regardless of
// which named field holds them. Used by Print and the dot renderer so
// neither has to special-case every NodeType twice.
func (n *Node) children() []*Node {
	var c []*Node
	c = append(c, n.Decls...)
	c = append(c, n.Params...)
	if n.Body != nil {
		c = append(c, n.Body)
	}
	if n.Cond != nil {
		c = append(c, n.Cond)
	}
	if n.Then != nil {
		c = append(c, n.Then)
	}
	if n.Else != nil {
		c = append(c, n.Else)
	}
	c = append(c, n.Stmts...)
	if n.Expr != nil {
		c = append(c, n.Expr)
	}
	if n.Left != nil {
		c = append(c, n.Left)
	}
	if n.Right != nil {
		c = append(c, n.Right)
	}
	if n.Index != nil {
		c = append(c, n.Index)
	}
	c = append(c, n.Args...)
	return c
}

// Children returns n's direct AST children in source order.
func (n *Node) Children() []*Node {
	return n.children()
}

// Print writes an indented tree dump of n to sb, for debugging.
func (n *Node) Print(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	for _, c := range n.children() {
		c.Print(sb, depth+1)
	}
}
