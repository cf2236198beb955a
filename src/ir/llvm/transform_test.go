package llvm

import (
	"strings"
	"testing"

	"cmm/src/frontend"
	"cmm/src/ir"

	"tinygo.org/x/go-llvm"
)

func compileSrc(t *testing.T, src string) (llvm.Module, error) {
	t.Helper()
	root, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	ctx := llvm.NewContext()
	t.Cleanup(ctx.Dispose)
	return Compile(ctx, "test", root)
}

func TestCompileMinimalMain(t *testing.T) {
	mod, err := compileSrc(t, "int main(void) { return 0; }")
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	ir := mod.String()
	if !strings.Contains(ir, "define i32 @main()") {
		t.Errorf("expected a define for main, got:\n%s", ir)
	}
	if !strings.Contains(ir, "declare i32 @input()") || !strings.Contains(ir, "declare void @output(i32") {
		t.Errorf("expected runtime declarations for input/output, got:\n%s", ir)
	}
}

func TestCompileFibonacciRecursion(t *testing.T) {
	src := `
int fib(int n) {
	if (n <= 1) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}

int main(void) {
	return fib(10);
}
`
	mod, err := compileSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	ir := mod.String()
	if !strings.Contains(ir, "define i32 @fib(i32") {
		t.Errorf("expected a define for fib, got:\n%s", ir)
	}
	if strings.Count(ir, "call i32 @fib") != 3 {
		t.Errorf("expected three calls to fib (two recursive, one from main), got:\n%s", ir)
	}
}

func TestCompileImplicitReturnNonVoid(t *testing.T) {
	mod, err := compileSrc(t, "int f(void) { int x; x = 1; }")
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	if !strings.Contains(mod.String(), "ret i32 0") {
		t.Errorf("expected an implicit `ret i32 0`, got:\n%s", mod.String())
	}
}

func TestCompileWhileLoopTerminatorDiscipline(t *testing.T) {
	src := `
int f(int n) {
	while (n > 0) {
		if (n == 1) {
			return 1;
		}
		n = n - 1;
	}
	return 0;
}
`
	mod, err := compileSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected compile error (terminator discipline should hold): %s", err)
	}
	if err := llvm.VerifyModule(mod, llvm.ReturnStatusAction); err != nil {
		t.Fatalf("module fails verification (terminator discipline should hold): %s", err)
	}
}

func TestCompileArrayDecay(t *testing.T) {
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
	mod, err := compileSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	if !strings.Contains(mod.String(), "getelementptr") {
		t.Errorf("expected a getelementptr for array indexing, got:\n%s", mod.String())
	}
}

func TestCompileRejectsForwardReference(t *testing.T) {
	src := `
int main(void) {
	return helper();
}
int helper(void) {
	return 1;
}
`
	_, err := compileSrc(t, src)
	if err == nil {
		t.Fatalf("expected a FunctionNotDefined error for a forward reference")
	}
	ce, ok := err.(*ir.CompileError)
	if !ok || ce.Kind != ir.FunctionNotDefined {
		t.Fatalf("expected FunctionNotDefined, got %v", err)
	}
}

func TestCompileMismatchedTypeAssignment(t *testing.T) {
	src := `
int main(void) {
	int x;
	int y[4];
	x = y;
	return 0;
}
`
	_, err := compileSrc(t, src)
	if err == nil {
		t.Fatalf("expected a type error assigning an array to an int")
	}
}

func TestCompileUndefinedVariable(t *testing.T) {
	_, err := compileSrc(t, "int main(void) { return x; }")
	if err == nil {
		t.Fatalf("expected a VariableNotDefined error")
	}
	ce, ok := err.(*ir.CompileError)
	if !ok || ce.Kind != ir.VariableNotDefined {
		t.Fatalf("expected VariableNotDefined, got %v", err)
	}
}

func TestCompileRedefinedVariable(t *testing.T) {
	_, err := compileSrc(t, "int main(void) { int x; int x; return 0; }")
	if err == nil {
		t.Fatalf("expected a VariableRedefinition error")
	}
	ce, ok := err.(*ir.CompileError)
	if !ok || ce.Kind != ir.VariableRedefinition {
		t.Fatalf("expected VariableRedefinition, got %v", err)
	}
}

func TestCompileLogicalOperatorsWiden(t *testing.T) {
	mod, err := compileSrc(t, "int f(int a, int b) { return a && b; }")
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	if !strings.Contains(mod.String(), "zext") {
		t.Errorf("expected a zext widening the i1 logical result, got:\n%s", mod.String())
	}
}

func TestCompileIdempotence(t *testing.T) {
	src := "int main(void) { return 0; }"
	mod1, err := compileSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	mod2, err := compileSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected compile error: %s", err)
	}
	if mod1.String() != mod2.String() {
		t.Errorf("expected identical IR for identical source across independent compiles")
	}
}
