// dot.go renders a parsed C-- program as Graphviz DOT text, for visual
// inspection of the AST. It is a pure syntax-tree walk: it runs before, and
// independently of, semantic lowering, so it never touches the symbol
// environment or LLVM.

package dot

import (
	"fmt"
	"strings"

	"cmm/src/ir"
)

// renderer accumulates DOT node and edge statements while walking the AST.
// Its node-id counter is local to one renderer instance, never a package
// level variable, so concurrent or repeated renders never collide.
type renderer struct {
	nextID int
	sb     strings.Builder
}

// Render returns the DOT source for root (a Program node) as a digraph
// named name.
func Render(root *ir.Node, name string) string {
	r := &renderer{nextID: 1}
	r.walk(root)
	return fmt.Sprintf("digraph %s {\n%s}\n", dotIdent(name), r.sb.String())
}

// walk emits the DOT node statement for n and an edge to each of its
// children, then recurses. It returns n's allocated node id so the caller
// can draw an edge from the parent.
func (r *renderer) walk(n *ir.Node) int {
	id := r.alloc()
	r.sb.WriteString(fmt.Sprintf("  node%d [label=%q];\n", id, n.String()))
	for _, c := range n.Children() {
		cid := r.walk(c)
		r.sb.WriteString(fmt.Sprintf("  node%d -> node%d;\n", id, cid))
	}
	return id
}

// alloc returns the next unused node id.
func (r *renderer) alloc() int {
	id := r.nextID
	r.nextID++
	return id
}

// dotIdent quotes name as a DOT identifier if it isn't already a bare word.
func dotIdent(name string) string {
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return fmt.Sprintf("%q", name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}
