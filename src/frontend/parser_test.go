package frontend

import (
	"testing"

	"cmm/src/ir"
)

func TestParseMinimalMain(t *testing.T) {
	root, err := Parse("int main(void) { return 0; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(root.Decls) != 1 {
		t.Fatalf("expected 1 top-level decl, got %d", len(root.Decls))
	}
	fn := root.Decls[0]
	if fn.Typ != ir.FuncDecl || fn.Name != "main" || fn.VType != ir.Int {
		t.Fatalf("unexpected function node: %+v", fn)
	}
	if len(fn.Params) != 0 {
		t.Fatalf("expected 0 params for (void), got %d", len(fn.Params))
	}
	if len(fn.Body.Stmts) != 1 || fn.Body.Stmts[0].Typ != ir.Return {
		t.Fatalf("expected a single return statement in body")
	}
}

func TestParseFibonacci(t *testing.T) {
	src := `
int fib(int n) {
	if (n <= 1) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	fn := root.Decls[0]
	if fn.Typ != ir.FuncDecl || len(fn.Params) != 1 || fn.Params[0].VType != ir.Int {
		t.Fatalf("unexpected function signature: %+v", fn)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements in fib's body, got %d", len(fn.Body.Stmts))
	}
	ifStmt := fn.Body.Stmts[0]
	if ifStmt.Typ != ir.If || ifStmt.Cond.Typ != ir.BinaryExpr || ifStmt.Cond.Op != ir.Le {
		t.Fatalf("expected an if with a <= condition, got %+v", ifStmt)
	}
	ret := fn.Body.Stmts[1]
	if ret.Typ != ir.Return || ret.Expr.Typ != ir.BinaryExpr || ret.Expr.Op != ir.Add {
		t.Fatalf("expected a return of a sum, got %+v", ret)
	}
}

func TestParseArrayAndPointerParams(t *testing.T) {
	src := `
int sum(int arr[], int n) {
	int total;
	int i;
	total = 0;
	i = 0;
	while (i < n) {
		total = total + arr[i];
		i = i + 1;
	}
	return total;
}
`
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	fn := root.Decls[0]
	if fn.Params[0].VType != ir.IntPtr {
		t.Fatalf("expected array parameter to decay to IntPtr, got %s", fn.Params[0].VType)
	}
}

func TestParseGlobalArrayDecl(t *testing.T) {
	root, err := Parse("int buf[16];\nint main(void) { return buf[0]; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	decl := root.Decls[0]
	if decl.Typ != ir.VarDecl || decl.VType != ir.IntArray || decl.ArrLen != 16 {
		t.Fatalf("unexpected array declaration: %+v", decl)
	}
}

func TestParseIntegerLiteralBases(t *testing.T) {
	root, err := Parse("int main(void) { return 0x1F + 0b101 + 0o17; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	ret := root.Decls[0].Body.Stmts[0]
	if ret.Typ != ir.Return {
		t.Fatalf("expected return statement")
	}
}

func TestParseIntegerLiteralOverflow(t *testing.T) {
	_, err := Parse("int main(void) { return 99999999999; }")
	if err == nil {
		t.Fatalf("expected an overflow parse error")
	}
	ce, ok := err.(*ir.CompileError)
	if !ok || ce.Kind != ir.ParseError {
		t.Fatalf("expected a ParseError CompileError, got %v", err)
	}
}

func TestParseUnexpectedToken(t *testing.T) {
	_, err := Parse("int main(void) { return }")
	if err == nil {
		t.Fatalf("expected a parse error for the missing return value")
	}
}
