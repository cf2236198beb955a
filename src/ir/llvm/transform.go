// transform.go is the function & module assembler: it walks the AST once,
// in source order, and emits an LLVM module. Scope/type/definition checking
// happens inline as each construct is lowered, rather than as a separate
// validation pass, so a single traversal both checks and builds.
//
// Top-level declarations are bound to the symbol environment in the same
// pass that lowers them: a function's name becomes visible only once its
// header has been emitted, immediately before its body is lowered. This is
// why a call to a function declared later in the file is rejected rather
// than resolved — by design, not by oversight.

package llvm

import (
	"cmm/src/ir"

	"tinygo.org/x/go-llvm"
)

// builder carries the state threaded through every gen* call: the context
// and module being assembled, the instruction builder at the current insert
// point, and the symbol environment.
type builder struct {
	ctx llvm.Context
	mod llvm.Module
	irb llvm.Builder
	env *env
}

// Compile lowers program, the root Program node produced by the frontend,
// into a new LLVM module named moduleName. It returns the first semantic
// error encountered, positioned per ir.CompileError's "line:col" contract.
func Compile(ctx llvm.Context, moduleName string, program *ir.Node) (llvm.Module, error) {
	mod := ctx.NewModule(moduleName)
	irb := ctx.NewBuilder()
	defer irb.Dispose()

	b := &builder{ctx: ctx, mod: mod, irb: irb, env: newEnv()}
	b.declareRuntime()

	for _, decl := range program.Decls {
		var err error
		switch decl.Typ {
		case ir.VarDecl:
			err = b.genGlobalVarDecl(decl)
		case ir.FuncDecl:
			err = b.genFunction(decl)
		}
		if err != nil {
			return llvm.Module{}, err
		}
	}
	return mod, nil
}

// declareRuntime injects the two external-linkage runtime functions every
// C-- program may call: "input() -> int" and "output(int) -> void". Neither
// is defined here; the linker resolves them against io.c.
func (b *builder) declareRuntime() {
	inputType := llvm.FunctionType(b.ctx.Int32Type(), nil, false)
	inputFn := llvm.AddFunction(b.mod, "input", inputType)
	b.env.declareFunc("input", &function{ret: ir.Int, fn: inputFn})

	outputType := llvm.FunctionType(b.ctx.VoidType(), []llvm.Type{b.ctx.Int32Type()}, false)
	outputFn := llvm.AddFunction(b.mod, "output", outputType)
	b.env.declareFunc("output", &function{ret: ir.Void, params: []ir.Type{ir.Int}, fn: outputFn})
}

// genGlobalVarDecl lowers a file-scope variable declaration.
func (b *builder) genGlobalVarDecl(d *ir.Node) error {
	if d.VType == ir.IntArray {
		arrTy := llvm.ArrayType(b.ctx.Int32Type(), d.ArrLen)
		arr := llvm.AddGlobal(b.mod, arrTy, d.Name+".data")
		arr.SetInitializer(llvm.ConstNull(arrTy))

		ptrSlot := llvm.AddGlobal(b.mod, llvm.PointerType(b.ctx.Int32Type(), 0), d.Name)
		zero := llvm.ConstInt(b.ctx.Int32Type(), 0, false)
		decayed := llvm.ConstGEP(arr, []llvm.Value{zero, zero})
		ptrSlot.SetInitializer(decayed)

		if !b.env.declareGlobal(d.Name, &variable{typ: ir.IntArray, arrLen: d.ArrLen, addr: ptrSlot}) {
			return ir.Errorf(d.Line, d.Col, ir.VariableRedefinition, "variable %q already defined", d.Name)
		}
		return nil
	}

	g := llvm.AddGlobal(b.mod, d.VType.LLVM(b.ctx, 0), d.Name)
	g.SetInitializer(d.VType.Zero(b.ctx))
	if !b.env.declareGlobal(d.Name, &variable{typ: d.VType, addr: g}) {
		return ir.Errorf(d.Line, d.Col, ir.VariableRedefinition, "variable %q already defined", d.Name)
	}
	return nil
}

// genFunction lowers a function declaration: its header is bound to the
// symbol environment first, then its body is lowered in the same call.
func (b *builder) genFunction(fn *ir.Node) error {
	paramTypes := make([]ir.Type, len(fn.Params))
	llvmParamTypes := make([]llvm.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.VType
		llvmParamTypes[i] = p.VType.LLVM(b.ctx, 0)
	}
	fnType := llvm.FunctionType(fn.VType.LLVM(b.ctx, 0), llvmParamTypes, false)
	fnVal := llvm.AddFunction(b.mod, fn.Name, fnType)

	if !b.env.declareFunc(fn.Name, &function{ret: fn.VType, params: paramTypes, fn: fnVal}) {
		return ir.Errorf(fn.Line, fn.Col, ir.FunctionRedefinition, "function %q already defined", fn.Name)
	}

	entry := llvm.AddBasicBlock(fnVal, "entry")
	b.irb.SetInsertPointAtEnd(entry)

	b.env.pushScope()
	defer b.env.popScope()

	for i, p := range fn.Params {
		addr := b.irb.CreateAlloca(p.VType.LLVM(b.ctx, 0), p.Name)
		b.irb.CreateStore(fnVal.Param(i), addr)
		if !b.env.declareLocal(p.Name, &variable{typ: p.VType, addr: addr}) {
			return ir.Errorf(p.Line, p.Col, ir.VariableRedefinition, "parameter %q already defined", p.Name)
		}
	}

	returned, err := b.genFuncBody(fn.Body)
	if err != nil {
		return err
	}
	if !returned {
		if fn.VType == ir.Void {
			b.irb.CreateRetVoid()
		} else {
			b.irb.CreateRet(fn.VType.Zero(b.ctx))
		}
	}
	return nil
}

// genFuncBody lowers a function's top-level block without opening an
// additional scope frame, so the body's own locals share a frame with the
// function's parameters.
func (b *builder) genFuncBody(blk *ir.Node) (bool, error) {
	for _, d := range blk.Decls {
		if err := b.genLocalVarDecl(d); err != nil {
			return false, err
		}
	}
	returned := false
	for _, s := range blk.Stmts {
		r, err := b.genStmt(s)
		if err != nil {
			return false, err
		}
		returned = r
	}
	return returned, nil
}

// genLocalVarDecl lowers a local variable declaration, performing array
// decay for IntArray locals: an anonymous array alloca holds the storage,
// and the declared name is bound to a second alloca holding a pointer to
// the array's first element.
func (b *builder) genLocalVarDecl(d *ir.Node) error {
	if d.VType == ir.IntArray {
		arrTy := llvm.ArrayType(b.ctx.Int32Type(), d.ArrLen)
		arrSlot := b.irb.CreateAlloca(arrTy, d.Name+".data")
		ptrSlot := b.irb.CreateAlloca(llvm.PointerType(b.ctx.Int32Type(), 0), d.Name)
		zero := llvm.ConstInt(b.ctx.Int32Type(), 0, false)
		decayed := b.irb.CreateInBoundsGEP(arrSlot, []llvm.Value{zero, zero}, "decay")
		b.irb.CreateStore(decayed, ptrSlot)
		if !b.env.declareLocal(d.Name, &variable{typ: ir.IntArray, arrLen: d.ArrLen, addr: ptrSlot}) {
			return ir.Errorf(d.Line, d.Col, ir.VariableRedefinition, "variable %q already defined", d.Name)
		}
		return nil
	}

	addr := b.irb.CreateAlloca(d.VType.LLVM(b.ctx, 0), d.Name)
	if !b.env.declareLocal(d.Name, &variable{typ: d.VType, addr: addr}) {
		return ir.Errorf(d.Line, d.Col, ir.VariableRedefinition, "variable %q already defined", d.Name)
	}
	return nil
}

// genStmt lowers one statement. It returns true when the statement
// unconditionally transferred control (i.e. it, or every path through it,
// ended in a return), so callers building structural control flow (block,
// if/else, while) know whether a fallthrough branch is still needed.
func (b *builder) genStmt(s *ir.Node) (bool, error) {
	switch s.Typ {
	case ir.Block:
		b.env.pushScope()
		defer b.env.popScope()
		for _, d := range s.Decls {
			if err := b.genLocalVarDecl(d); err != nil {
				return false, err
			}
		}
		returned := false
		for _, st := range s.Stmts {
			r, err := b.genStmt(st)
			if err != nil {
				return false, err
			}
			returned = r
		}
		return returned, nil
	case ir.ExprStmt:
		_, _, err := b.genExpr(s.Expr)
		return false, err
	case ir.If:
		return b.genIf(s)
	case ir.While:
		return b.genWhile(s)
	case ir.Return:
		return true, b.genReturn(s)
	}
	panic("llvm: unreachable statement node")
}

// genIf lowers an if/else statement, guarding each branch's fallthrough
// branch on whether that branch's own body already ended in a return.
func (b *builder) genIf(s *ir.Node) (bool, error) {
	fun := b.irb.GetInsertBlock().Parent()

	condTy, cond, err := b.genExpr(s.Cond)
	if err != nil {
		return false, err
	}
	if condTy != ir.Int {
		return false, ir.Errorf(s.Cond.Line, s.Cond.Col, ir.MismatchedType, "if condition must be int, got %s", condTy)
	}
	cond = b.truncToBool(cond)

	thenBB := llvm.AddBasicBlock(fun, "if.then")

	if s.Else == nil {
		convBB := llvm.AddBasicBlock(fun, "if.end")
		b.irb.CreateCondBr(cond, thenBB, convBB)

		b.irb.SetInsertPointAtEnd(thenBB)
		retThen, err := b.genStmt(s.Then)
		if err != nil {
			return false, err
		}
		if !retThen {
			b.irb.CreateBr(convBB)
		}
		b.irb.SetInsertPointAtEnd(convBB)
		return false, nil
	}

	elseBB := llvm.AddBasicBlock(fun, "if.else")
	b.irb.CreateCondBr(cond, thenBB, elseBB)

	b.irb.SetInsertPointAtEnd(thenBB)
	retThen, err := b.genStmt(s.Then)
	if err != nil {
		return false, err
	}
	var convBB llvm.BasicBlock
	if !retThen {
		convBB = llvm.AddBasicBlock(fun, "if.end")
		b.irb.CreateBr(convBB)
	}

	b.irb.SetInsertPointAtEnd(elseBB)
	retElse, err := b.genStmt(s.Else)
	if err != nil {
		return false, err
	}
	if !retElse {
		if convBB.IsNil() {
			convBB = llvm.AddBasicBlock(fun, "if.end")
		}
		b.irb.CreateBr(convBB)
	}

	if !convBB.IsNil() {
		b.irb.SetInsertPointAtEnd(convBB)
		return false, nil
	}
	// Both branches returned: every path through this statement is terminated.
	return true, nil
}

// genWhile lowers a while statement. The back-edge to the loop head is
// guarded on the body not already having returned, matching the guard used
// for if/else fallthrough branches — without it, a body ending in "return"
// would leave its block with two terminators.
func (b *builder) genWhile(s *ir.Node) (bool, error) {
	fun := b.irb.GetInsertBlock().Parent()

	head := llvm.AddBasicBlock(fun, "while.head")
	body := llvm.AddBasicBlock(fun, "while.body")
	conv := llvm.AddBasicBlock(fun, "while.end")

	b.irb.CreateBr(head)
	b.irb.SetInsertPointAtEnd(head)
	condTy, cond, err := b.genExpr(s.Cond)
	if err != nil {
		return false, err
	}
	if condTy != ir.Int {
		return false, ir.Errorf(s.Cond.Line, s.Cond.Col, ir.MismatchedType, "while condition must be int, got %s", condTy)
	}
	cond = b.truncToBool(cond)
	b.irb.CreateCondBr(cond, body, conv)

	b.irb.SetInsertPointAtEnd(body)
	returned, err := b.genStmt(s.Then)
	if err != nil {
		return false, err
	}
	if !returned {
		b.irb.CreateBr(head)
	}

	b.irb.SetInsertPointAtEnd(conv)
	return false, nil
}

// genReturn lowers a return statement, type-checking its operand (if any)
// against the enclosing function's declared return type.
func (b *builder) genReturn(s *ir.Node) error {
	fun := b.irb.GetInsertBlock().Parent()
	retTy := fun.Type().ElementType().ReturnType()

	if s.Expr == nil {
		if retTy != b.ctx.VoidType() {
			return ir.Errorf(s.Line, s.Col, ir.MismatchedType, "missing return value in non-void function")
		}
		b.irb.CreateRetVoid()
		return nil
	}

	ty, val, err := b.genExpr(s.Expr)
	if err != nil {
		return err
	}
	if ty == ir.Void {
		return ir.Errorf(s.Expr.Line, s.Expr.Col, ir.ExpressionVoidType, "cannot return a void expression")
	}
	if ty.LLVM(b.ctx, 0) != retTy {
		return ir.Errorf(s.Line, s.Col, ir.MismatchedType, "return type mismatch: function returns a different type")
	}
	b.irb.CreateRet(val)
	return nil
}

// truncToBool narrows an i32 value to the i1 LLVM requires for a branch
// condition, by keeping its low bit.
func (b *builder) truncToBool(v llvm.Value) llvm.Value {
	return b.irb.CreateTrunc(v, b.ctx.Int1Type(), "tobool")
}

// genExpr lowers an expression and returns its static type alongside the
// LLVM value it produces.
func (b *builder) genExpr(e *ir.Node) (ir.Type, llvm.Value, error) {
	switch e.Typ {
	case ir.IntLit:
		return ir.Int, llvm.ConstInt(b.ctx.Int32Type(), uint64(uint32(e.Value)), true), nil
	case ir.Variable:
		return b.genVariableRead(e)
	case ir.Assign:
		return b.genAssign(e)
	case ir.CallExpr:
		return b.genCall(e)
	case ir.BinaryExpr:
		return b.genBinary(e)
	}
	panic("llvm: unreachable expression node")
}

// resolveAddressable resolves v (a Variable node, possibly subscripted) to
// the address the expression lowerer should load from or store to, along
// with the type of value stored at that address.
func (b *builder) resolveAddressable(v *ir.Node) (ir.Type, llvm.Value, error) {
	sym, ok := b.env.lookup(v.Name)
	if !ok {
		return 0, llvm.Value{}, ir.Errorf(v.Line, v.Col, ir.VariableNotDefined, "variable %q is not defined", v.Name)
	}

	if v.Index == nil {
		if sym.typ == ir.IntArray {
			return 0, llvm.Value{}, ir.Errorf(v.Line, v.Col, ir.MismatchedType, "array %q must be indexed", v.Name)
		}
		return sym.typ, sym.addr, nil
	}

	if sym.typ != ir.IntArray && sym.typ != ir.IntPtr {
		return 0, llvm.Value{}, ir.Errorf(v.Line, v.Col, ir.MismatchedType, "%q is not an array or pointer", v.Name)
	}
	idxTy, idxVal, err := b.genExpr(v.Index)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	if idxTy != ir.Int {
		return 0, llvm.Value{}, ir.Errorf(v.Index.Line, v.Index.Col, ir.IndexNotInt, "array index must be int")
	}
	base := b.irb.CreateLoad(sym.addr, "")
	elemPtr := b.irb.CreateGEP(base, []llvm.Value{idxVal}, "elem")
	return ir.Int, elemPtr, nil
}

// genVariableRead lowers a (possibly subscripted) variable reference used
// as an r-value.
func (b *builder) genVariableRead(v *ir.Node) (ir.Type, llvm.Value, error) {
	ty, addr, err := b.resolveAddressable(v)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	return ty, b.irb.CreateLoad(addr, ""), nil
}

// genAssign lowers an assignment. Assignment is an expression: it yields
// the value that was stored, so it may itself appear as an operand.
func (b *builder) genAssign(a *ir.Node) (ir.Type, llvm.Value, error) {
	targetTy, addr, err := b.resolveAddressable(a.Left)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	rhsTy, rhsVal, err := b.genExpr(a.Right)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	if rhsTy != targetTy {
		return 0, llvm.Value{}, ir.Errorf(a.Line, a.Col, ir.MismatchedType,
			"cannot assign %s to variable of type %s", rhsTy, targetTy)
	}
	b.irb.CreateStore(rhsVal, addr)
	return targetTy, rhsVal, nil
}

// genCall lowers a function call, type-checking argument count and types
// against the callee's declared signature.
func (b *builder) genCall(c *ir.Node) (ir.Type, llvm.Value, error) {
	fn, ok := b.env.lookupFunc(c.Name)
	if !ok {
		return 0, llvm.Value{}, ir.Errorf(c.Line, c.Col, ir.FunctionNotDefined, "function %q is not defined", c.Name)
	}
	if len(c.Args) != len(fn.params) {
		return 0, llvm.Value{}, ir.Errorf(c.Line, c.Col, ir.MismatchedTypeFunction,
			"function %q expects %d arguments, got %d", c.Name, len(fn.params), len(c.Args))
	}
	args := make([]llvm.Value, len(c.Args))
	for i, a := range c.Args {
		ty, val, err := b.genExpr(a)
		if err != nil {
			return 0, llvm.Value{}, err
		}
		if ty != fn.params[i] {
			return 0, llvm.Value{}, ir.Errorf(a.Line, a.Col, ir.MismatchedTypeFunction,
				"argument %d to %q: expected %s, got %s", i+1, c.Name, fn.params[i], ty)
		}
		args[i] = val
	}
	return fn.ret, b.irb.CreateCall(fn.fn, args, ""), nil
}

// genBinary lowers a binary expression. Comparison and logical operators
// widen their i1 result to i32, per the language's single-integer type
// model; arithmetic and bitwise operators are a direct instruction mapping.
func (b *builder) genBinary(e *ir.Node) (ir.Type, llvm.Value, error) {
	lt, lv, err := b.genExpr(e.Left)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	rt, rv, err := b.genExpr(e.Right)
	if err != nil {
		return 0, llvm.Value{}, err
	}
	if !lt.IsArithmetic() || !rt.IsArithmetic() {
		return 0, llvm.Value{}, ir.Errorf(e.Line, e.Col, ir.MismatchedType,
			"operator %s requires int or pointer operands", e.Op)
	}
	if lt == ir.IntPtr {
		lv = b.irb.CreatePtrToInt(lv, b.ctx.Int32Type(), "ptrtoint")
	}
	if rt == ir.IntPtr {
		rv = b.irb.CreatePtrToInt(rv, b.ctx.Int32Type(), "ptrtoint")
	}

	if e.Op.IsComparison() {
		return ir.Int, b.genCompare(e.Op, lv, rv), nil
	}

	var v llvm.Value
	switch e.Op {
	case ir.Add:
		v = b.irb.CreateAdd(lv, rv, "")
	case ir.Sub:
		v = b.irb.CreateSub(lv, rv, "")
	case ir.Mul:
		v = b.irb.CreateMul(lv, rv, "")
	case ir.Div:
		v = b.irb.CreateSDiv(lv, rv, "")
	case ir.Mod:
		v = b.irb.CreateSRem(lv, rv, "")
	case ir.Band:
		v = b.irb.CreateAnd(lv, rv, "")
	case ir.Bor:
		v = b.irb.CreateOr(lv, rv, "")
	case ir.Bxor:
		v = b.irb.CreateXor(lv, rv, "")
	case ir.LShift:
		v = b.irb.CreateShl(lv, rv, "")
	case ir.RShift:
		v = b.irb.CreateAShr(lv, rv, "")
	default:
		panic("llvm: unreachable binary operator")
	}
	return ir.Int, v, nil
}

// genCompare lowers a comparison or logical operator, widening the i1
// result to i32 (0 or 1).
func (b *builder) genCompare(op ir.Operator, lv, rv llvm.Value) llvm.Value {
	var i1 llvm.Value
	switch op {
	case ir.Eq:
		i1 = b.irb.CreateICmp(llvm.IntEQ, lv, rv, "")
	case ir.Ne:
		i1 = b.irb.CreateICmp(llvm.IntNE, lv, rv, "")
	case ir.Lt:
		i1 = b.irb.CreateICmp(llvm.IntSLT, lv, rv, "")
	case ir.Le:
		i1 = b.irb.CreateICmp(llvm.IntSLE, lv, rv, "")
	case ir.Gt:
		i1 = b.irb.CreateICmp(llvm.IntSGT, lv, rv, "")
	case ir.Ge:
		i1 = b.irb.CreateICmp(llvm.IntSGE, lv, rv, "")
	case ir.Land:
		// Not short-circuiting: both operands are combined bitwise, then
		// compared against zero.
		zero := llvm.ConstInt(b.ctx.Int32Type(), 0, false)
		i1 = b.irb.CreateICmp(llvm.IntNE, b.irb.CreateAnd(lv, rv, ""), zero, "")
	case ir.Lor:
		zero := llvm.ConstInt(b.ctx.Int32Type(), 0, false)
		i1 = b.irb.CreateICmp(llvm.IntNE, b.irb.CreateOr(lv, rv, ""), zero, "")
	default:
		panic("llvm: unreachable comparison operator")
	}
	return b.irb.CreateZExt(i1, b.ctx.Int32Type(), "")
}
